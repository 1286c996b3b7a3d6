// Package embedding turns images into fixed-length feature vectors using
// remote inference backends.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrEmbeddingUnavailable indicates no backend could produce a vector.
var ErrEmbeddingUnavailable = errors.New("no embedding backend could produce a vector")

// Backend computes an embedding vector from raw image bytes.
type Backend interface {
	Name() string
	Embed(ctx context.Context, imageData []byte) ([]float32, error)
}

// Provider tries an ordered list of backends and memoizes successful
// per-URL results for the lifetime of the process.
type Provider struct {
	backends []Backend
	fetcher  *Fetcher

	mu   sync.RWMutex
	memo map[string][]float32
}

// NewProvider creates a provider over the given backends, tried in order.
func NewProvider(fetcher *Fetcher, backends ...Backend) *Provider {
	return &Provider{
		backends: backends,
		fetcher:  fetcher,
		memo:     make(map[string][]float32),
	}
}

// Embed computes an embedding for raw image bytes. Backends are tried in
// preference order; the last error is kept for diagnostics.
func (p *Provider) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	if len(p.backends) == 0 {
		return nil, ErrEmbeddingUnavailable
	}

	var lastErr error
	for _, b := range p.backends {
		vector, err := b.Embed(ctx, imageData)
		if err != nil {
			log.Printf("embedding backend %s failed: %v", b.Name(), err)
			lastErr = err
			continue
		}
		return vector, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, lastErr)
}

// EmbedURL fetches an image by URL and embeds it. Successful vectors are
// memoized by URL so a photo recurring within a session is not recomputed.
func (p *Provider) EmbedURL(ctx context.Context, rawURL string) ([]float32, error) {
	p.mu.RLock()
	cached, ok := p.memo[rawURL]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	imageData, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("could not fetch image: %w", err)
	}

	vector, err := p.Embed(ctx, imageData)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.memo[rawURL] = vector
	p.mu.Unlock()
	return vector, nil
}
