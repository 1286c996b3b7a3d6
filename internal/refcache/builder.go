package refcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentloop/lookscreen/internal/storage"
	"github.com/talentloop/lookscreen/internal/vecmath"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// groupPrefix marks storage folders that hold reference look groups when no
// explicit group list is configured.
const groupPrefix = "reference"

// ErrBuildInProgress is returned when a rebuild is requested while another
// one is still running.
var ErrBuildInProgress = errors.New("cache build already in progress")

// Embedder produces one vector per image URL.
type Embedder interface {
	EmbedURL(ctx context.Context, rawURL string) ([]float32, error)
}

// ImageSource lists reference groups and their member image URLs.
type ImageSource interface {
	ListGroups(ctx context.Context) ([]storage.Group, error)
	ListGroupImages(ctx context.Context, groupName string, max int) ([]string, error)
}

// Builder constructs cache snapshots from a storage listing and an
// embedding provider.
type Builder struct {
	cache    *Cache
	source   ImageSource
	embedder Embedder

	// GroupNames bypasses discovery when non-empty.
	GroupNames []string
	// MaxSamples caps the images embedded per group (first N by listing order).
	MaxSamples int
	// Workers is the embedding worker pool size per group.
	Workers int
	// OnProgress, when set, is called after each group finishes.
	OnProgress func(done, total int)

	titleCaser cases.Caser
}

// NewBuilder creates a builder publishing into the given cache.
func NewBuilder(cache *Cache, source ImageSource, embedder Embedder) *Builder {
	return &Builder{
		cache:      cache,
		source:     source,
		embedder:   embedder,
		MaxSamples: 25,
		Workers:    2,
		titleCaser: cases.Title(language.English),
	}
}

// Rebuild discovers the reference groups, embeds a bounded sample of each,
// and atomically replaces the cache snapshot. Only one build may run at a
// time; concurrent callers get ErrBuildInProgress. Per-image and per-group
// failures are logged and skipped, never escalated.
func (b *Builder) Rebuild(ctx context.Context) (*Snapshot, error) {
	if b.source == nil {
		return nil, storage.ErrMissingCredentials
	}
	if !b.cache.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer b.cache.buildMu.Unlock()

	buildID := uuid.NewString()
	b.cache.setBuilding(true)
	started := time.Now()
	log.Printf("cache build %s: starting", buildID)

	names, err := b.resolveGroupNames(ctx)
	if err != nil {
		b.cache.setBuilding(false)
		return nil, fmt.Errorf("could not resolve group names: %w", err)
	}

	snapshot := &Snapshot{
		State:   StateReady,
		BuildID: buildID,
		BuiltAt: started,
	}

	for i, name := range names {
		group, failures := b.buildGroup(ctx, buildID, name)
		snapshot.SampleFailures += failures
		if group != nil {
			snapshot.Groups = append(snapshot.Groups, *group)
		}
		if b.OnProgress != nil {
			b.OnProgress(i+1, len(names))
		}
	}

	b.cache.replace(snapshot)
	log.Printf("cache build %s: done in %s, %d/%d groups, %d failed samples",
		buildID, time.Since(started).Round(time.Millisecond), len(snapshot.Groups), len(names), snapshot.SampleFailures)
	return snapshot, nil
}

// resolveGroupNames uses the configured explicit list when present,
// otherwise lists storage folders and keeps those with the reserved prefix.
func (b *Builder) resolveGroupNames(ctx context.Context) ([]string, error) {
	if len(b.GroupNames) > 0 {
		return b.GroupNames, nil
	}

	groups, err := b.source.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, g := range groups {
		if strings.HasPrefix(strings.ToLower(g.Name), groupPrefix) {
			names = append(names, g.Name)
		}
	}
	return names, nil
}

// buildGroup embeds a group's sampled images through the worker pool and
// folds them into a centroid. Returns nil when no image embedded
// successfully; such groups are dropped, not stored empty.
func (b *Builder) buildGroup(ctx context.Context, buildID, name string) (*Group, int) {
	urls, err := b.source.ListGroupImages(ctx, name, b.MaxSamples)
	if err != nil {
		log.Printf("cache build %s: could not list images for %q: %v", buildID, name, err)
		return nil, 0
	}
	if len(urls) > b.MaxSamples {
		urls = urls[:b.MaxSamples]
	}

	workers := b.Workers
	if workers <= 0 {
		workers = 2
	}

	// Workers pull URLs from a shared queue and fold each vector into a
	// running sum under the mutex. Raw vectors are dropped right after
	// folding, so memory per group stays proportional to the vector
	// length, not the sample count.
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var sum []float64
	var count, failures int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				vector, err := b.embedder.EmbedURL(ctx, url)
				if err != nil {
					log.Printf("cache build %s: skipping sample in %q: %v", buildID, name, err)
					mu.Lock()
					failures++
					mu.Unlock()
					continue
				}
				mu.Lock()
				sum = vecmath.Accumulate(sum, vector)
				count++
				mu.Unlock()
			}
		}()
	}

	for _, url := range urls {
		jobs <- url
	}
	close(jobs)
	wg.Wait()

	if count == 0 {
		log.Printf("cache build %s: dropping group %q, no samples embedded", buildID, name)
		return nil, failures
	}

	return &Group{
		Label:       b.titleCaser.String(name),
		Gender:      GenderFromLabel(name),
		SampleCount: count,
		Centroid:    vecmath.Scale(sum, count),
	}, failures
}
