// Package eval combines the rule scores and the similarity match into one
// decision, confidence value, and reason trail. This is the system's single
// public evaluation contract.
package eval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/talentloop/lookscreen/internal/match"
	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/rules"
)

// Decision is the evaluation outcome.
type Decision string

const (
	DecisionProceed Decision = "proceed"
	DecisionReview  Decision = "review"
	DecisionReject  Decision = "reject"
)

const (
	proceedThreshold = 0.70
	reviewThreshold  = 0.45

	// Confidence blend weights.
	measurementWeight = 0.40
	heightWeight      = 0.25
	faceWeight        = 0.30
	photoTermWeight   = 0.05

	// photoBonusStep rewards each photo beyond the second, capped.
	photoBonusStep = 0.04
	photoBonusCap  = 0.12

	// tieBreakScale bounds the deterministic hash perturbation.
	tieBreakScale = 0.01
)

// Submission is one inbound evaluation request.
type Submission struct {
	Photos       []string
	Gender       string
	HeightCm     float64
	Age          int
	Measurements string
}

// Result is a fresh evaluation outcome; never persisted.
type Result struct {
	Decision       Decision
	Confidence     float64
	Reason         string
	Details        string
	FaceSimilarity float64
	FaceCluster    string
}

// Matcher scores a photo set against a cache snapshot.
type Matcher interface {
	Match(ctx context.Context, photoURLs []string, snapshot *refcache.Snapshot) match.Result
}

// Evaluator wires the rule scorer and the similarity matcher together.
type Evaluator struct {
	cache   *refcache.Cache
	matcher Matcher
}

// NewEvaluator creates an evaluator reading centroids from the given cache.
func NewEvaluator(cache *refcache.Cache, matcher Matcher) *Evaluator {
	return &Evaluator{cache: cache, matcher: matcher}
}

// Evaluate scores one submission. Degraded enrichment (empty cache, failed
// photo embeddings) yields a neutral, explained contribution; Evaluate
// itself never fails for business reasons.
func (e *Evaluator) Evaluate(ctx context.Context, sub Submission) Result {
	gender := ResolveGender(sub.Gender)
	profile := rules.ProfileFor(gender)

	ruleResult := profile.Score(sub.HeightCm, sub.Measurements)
	matchResult := e.matcher.Match(ctx, sub.Photos, e.cache.Snapshot())

	photoCount := len(sub.Photos)
	photoBonus := math.Min(math.Max(float64(photoCount-2)*photoBonusStep, 0), photoBonusCap)

	photoTerm := 0.0
	if photoCount > 0 {
		photoTerm = 0.6
	}

	confidence := measurementWeight*ruleResult.MeasurementScore +
		heightWeight*ruleResult.HeightScore +
		faceWeight*matchResult.Similarity +
		photoTermWeight*photoTerm +
		photoBonus +
		tieBreak(sub.Photos)
	confidence = math.Min(1, math.Max(0, confidence))

	reasons := append([]string{}, ruleResult.Reasons...)
	reasons = append(reasons, photoPhrase(photoCount))
	reasons = append(reasons, facePhrase(matchResult))

	return Result{
		Decision:       decide(confidence),
		Confidence:     confidence,
		Reason:         strings.Join(reasons, "; "),
		Details:        details(sub, gender),
		FaceSimilarity: matchResult.Similarity,
		FaceCluster:    matchResult.Label,
	}
}

// ResolveGender maps a free-form gender string onto a profile tag. Any
// string starting case-insensitively with "m" is male; everything else,
// including absent, is female.
func ResolveGender(gender string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(gender)), "m") {
		return "male"
	}
	return "female"
}

// tieBreak derives a small deterministic perturbation from the photo set so
// otherwise-equal submissions order stably. Same input, same value; this is
// not a source of randomness.
func tieBreak(photos []string) float64 {
	h := fnv.New64a()
	for _, p := range photos {
		h.Write([]byte(p))
	}
	return float64(h.Sum64()%1000) / 1000 * tieBreakScale
}

func decide(confidence float64) Decision {
	switch {
	case confidence >= proceedThreshold:
		return DecisionProceed
	case confidence >= reviewThreshold:
		return DecisionReview
	default:
		return DecisionReject
	}
}

func photoPhrase(count int) string {
	switch {
	case count == 0:
		return "no photos provided"
	case count < 3:
		return fmt.Sprintf("only %d photo(s) provided", count)
	default:
		return fmt.Sprintf("%d photos provided", count)
	}
}

func facePhrase(m match.Result) string {
	if m.Label == match.NoMatchLabel {
		return "look similarity " + rules.Phrase(m.Similarity) + " (" + m.Note + ")"
	}
	return fmt.Sprintf("look similarity %s (%s)", rules.Phrase(m.Similarity), m.Label)
}

// details renders the fixed-format input summary carried on every response.
func details(sub Submission, gender string) string {
	return fmt.Sprintf("gender=%s height_cm=%g age=%d measurements=%q photos=%d",
		gender, sub.HeightCm, sub.Age, sub.Measurements, len(sub.Photos))
}
