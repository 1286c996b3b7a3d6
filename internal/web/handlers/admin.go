package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/talentloop/lookscreen/internal/embedding"
	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/storage"
)

// AdminHandler serves the cache reload and embedding probe endpoints.
type AdminHandler struct {
	builder  *refcache.Builder
	provider *embedding.Provider
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(builder *refcache.Builder, provider *embedding.Provider) *AdminHandler {
	return &AdminHandler{builder: builder, provider: provider}
}

type groupSummary struct {
	Label       string `json:"label"`
	Gender      string `json:"gender"`
	SampleCount int    `json:"sample_count"`
}

type reloadResponse struct {
	BuildID        string         `json:"build_id"`
	Groups         []groupSummary `json:"groups"`
	SampleFailures int            `json:"sample_failures"`
}

// Reload handles POST /admin/reload. A build already in flight is rejected,
// not queued; the caller can retry once it finishes.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.builder.Rebuild(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, refcache.ErrBuildInProgress):
			respondError(w, http.StatusConflict, "cache build already in progress")
		case errors.Is(err, storage.ErrMissingCredentials):
			respondError(w, http.StatusServiceUnavailable, "storage credentials not configured")
		default:
			log.Printf("cache reload failed: %v", err)
			respondError(w, http.StatusInternalServerError, "cache reload failed")
		}
		return
	}

	resp := reloadResponse{
		BuildID:        snapshot.BuildID,
		Groups:         make([]groupSummary, 0, len(snapshot.Groups)),
		SampleFailures: snapshot.SampleFailures,
	}
	for _, g := range snapshot.Groups {
		resp.Groups = append(resp.Groups, groupSummary{
			Label:       g.Label,
			Gender:      string(g.Gender),
			SampleCount: g.SampleCount,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

type embedProbeRequest struct {
	URL string `json:"url"`
}

type embedProbeResponse struct {
	Dim int `json:"dim"`
}

// EmbedProbe handles POST /admin/embed: embeds one image URL and reports
// the resulting vector's dimensionality.
func (h *AdminHandler) EmbedProbe(w http.ResponseWriter, r *http.Request) {
	var req embedProbeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	vector, err := h.provider.EmbedURL(r.Context(), req.URL)
	if err != nil {
		log.Printf("embedding probe failed for %s: %v", sanitizeForLog(req.URL), err)
		respondError(w, http.StatusBadGateway, "could not embed image")
		return
	}

	respondJSON(w, http.StatusOK, embedProbeResponse{Dim: len(vector)})
}
