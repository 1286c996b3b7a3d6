package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/talentloop/lookscreen/internal/eval"
	"github.com/talentloop/lookscreen/internal/match"
	"github.com/talentloop/lookscreen/internal/refcache"
)

// neutralMatcher mimics an empty reference cache.
type neutralMatcher struct{}

func (neutralMatcher) Match(ctx context.Context, photoURLs []string, snapshot *refcache.Snapshot) match.Result {
	return match.Result{Similarity: 0.5, Label: match.NoMatchLabel, Note: "no reference profiles loaded"}
}

func newTestEvaluateHandler() *EvaluateHandler {
	return NewEvaluateHandler(eval.NewEvaluator(refcache.NewCache(), neutralMatcher{}))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestEvaluate_Success(t *testing.T) {
	h := newTestEvaluateHandler()

	rec := postJSON(t, h.Evaluate, `{
		"photos": ["http://cdn.example.com/1.jpg", "http://cdn.example.com/2.jpg", "http://cdn.example.com/3.jpg"],
		"gender": "female",
		"height_cm": 177,
		"measurements": "82-60-88"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not parse response: %v", err)
	}
	if resp.Decision != "proceed" {
		t.Errorf("decision = %q; want proceed (confidence %f)", resp.Decision, resp.Confidence)
	}
	if resp.FaceCluster != "none" {
		t.Errorf("face cluster = %q; want none with empty cache", resp.FaceCluster)
	}
	if resp.Reason == "" || resp.Details == "" {
		t.Error("expected reason and details to be populated")
	}
}

func TestEvaluate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"photos": [`},
		{"missing photos", `{"gender": "female"}`},
		{"empty photos", `{"photos": []}`},
		{"empty photo url", `{"photos": [""]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestEvaluateHandler()
			rec := postJSON(t, h.Evaluate, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", rec.Code)
			}
		})
	}
}

func TestEvaluate_DegradedStillDecides(t *testing.T) {
	// Empty cache and no usable biometrics must still produce a decision.
	h := newTestEvaluateHandler()

	rec := postJSON(t, h.Evaluate, `{"photos": ["http://cdn.example.com/1.jpg"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not parse response: %v", err)
	}
	if resp.Decision != "reject" {
		t.Errorf("decision = %q; want reject for missing biometrics", resp.Decision)
	}
}
