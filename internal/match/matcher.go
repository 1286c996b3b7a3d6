// Package match compares a submission's photos against the cached
// reference centroids.
package match

import (
	"context"
	"fmt"
	"log"

	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/vecmath"
)

const (
	// defaultMaxPhotos caps how many submission photos are embedded.
	// Embedding every photo is unnecessary cost; extras are ignored.
	defaultMaxPhotos = 5

	// neutralSimilarity is reported when no comparison could be made.
	neutralSimilarity = 0.5

	// NoMatchLabel marks a result with no usable reference group.
	NoMatchLabel = "none"
)

// Result is one similarity comparison outcome.
type Result struct {
	Similarity float64 // normalized to [0,1]
	Label      string  // best-matching group label, or "none"
	Note       string  // short phrase for the reason trail
}

// Embedder produces one vector per image URL.
type Embedder interface {
	EmbedURL(ctx context.Context, rawURL string) ([]float32, error)
}

// Matcher embeds submission photos and scores them against a snapshot.
type Matcher struct {
	embedder  Embedder
	maxPhotos int
}

// NewMatcher creates a matcher. maxPhotos <= 0 selects the default cap.
func NewMatcher(embedder Embedder, maxPhotos int) *Matcher {
	if maxPhotos <= 0 {
		maxPhotos = defaultMaxPhotos
	}
	return &Matcher{embedder: embedder, maxPhotos: maxPhotos}
}

// Match embeds up to the photo cap, averages the successful vectors, and
// returns the normalized cosine similarity against the best-matching cached
// centroid. Degraded conditions (empty cache, no embeddable photo) yield a
// neutral result, never an error.
func (m *Matcher) Match(ctx context.Context, photoURLs []string, snapshot *refcache.Snapshot) Result {
	if len(snapshot.Groups) == 0 {
		return Result{Similarity: neutralSimilarity, Label: NoMatchLabel, Note: "no reference profiles loaded"}
	}

	urls := photoURLs
	if len(urls) > m.maxPhotos {
		urls = urls[:m.maxPhotos]
	}

	var vectors [][]float32
	for _, url := range urls {
		vector, err := m.embedder.EmbedURL(ctx, url)
		if err != nil {
			log.Printf("similarity match: skipping photo: %v", err)
			continue
		}
		vectors = append(vectors, vector)
	}

	if len(vectors) == 0 {
		return Result{Similarity: neutralSimilarity, Label: NoMatchLabel, Note: "no photos could be analyzed"}
	}

	submission := vecmath.Mean(vectors)

	// Strictly-greatest keeps the first-seen candidate on ties, so the
	// result is deterministic over the snapshot's group order.
	best := snapshot.Groups[0]
	bestCosine := vecmath.CosineSimilarity(submission, best.Centroid)
	for _, g := range snapshot.Groups[1:] {
		if cosine := vecmath.CosineSimilarity(submission, g.Centroid); cosine > bestCosine {
			best = g
			bestCosine = cosine
		}
	}

	return Result{
		Similarity: (bestCosine + 1) / 2,
		Label:      best.Label,
		Note:       fmt.Sprintf("closest to reference look %q", best.Label),
	}
}
