package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/talentloop/lookscreen/internal/eval"
)

// EvaluateHandler serves the submission evaluation endpoint.
type EvaluateHandler struct {
	evaluator *eval.Evaluator
}

// NewEvaluateHandler creates an evaluate handler.
func NewEvaluateHandler(evaluator *eval.Evaluator) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator}
}

type evaluateRequest struct {
	Photos       []string `json:"photos"`
	Gender       string   `json:"gender"`
	HeightCm     float64  `json:"height_cm"`
	Age          int      `json:"age"`
	Measurements string   `json:"measurements"`
}

type evaluateResponse struct {
	Decision       string  `json:"decision"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
	Details        string  `json:"details"`
	FaceSimilarity float64 `json:"face_similarity"`
	FaceCluster    string  `json:"face_cluster"`
}

// Evaluate handles POST /evaluate. Validation failures are rejected before
// any computation; a degraded cache or embedding backend still yields a
// decision, never an error.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Photos) == 0 {
		respondError(w, http.StatusBadRequest, "photos must not be empty")
		return
	}
	for _, p := range req.Photos {
		if p == "" {
			respondError(w, http.StatusBadRequest, "photos must not contain empty URLs")
			return
		}
	}

	result := h.evaluator.Evaluate(r.Context(), eval.Submission{
		Photos:       req.Photos,
		Gender:       req.Gender,
		HeightCm:     req.HeightCm,
		Age:          req.Age,
		Measurements: req.Measurements,
	})

	respondJSON(w, http.StatusOK, evaluateResponse{
		Decision:       string(result.Decision),
		Confidence:     result.Confidence,
		Reason:         result.Reason,
		Details:        result.Details,
		FaceSimilarity: result.FaceSimilarity,
		FaceCluster:    result.FaceCluster,
	})
}
