// Package refcache holds the process-wide set of reference look groups,
// each reduced to a single centroid embedding.
package refcache

import (
	"strings"
	"sync"
	"time"
)

// State is the cache lifecycle state.
type State string

const (
	StateEmpty    State = "empty"
	StateBuilding State = "building"
	StateReady    State = "ready"
)

// GenderTag classifies a reference group by the gender its name implies.
type GenderTag string

const (
	GenderMale    GenderTag = "male"
	GenderFemale  GenderTag = "female"
	GenderUnknown GenderTag = "unknown"
)

// Group is one reference look, reduced to the mean of its sampled
// member-image embeddings. SampleCount is always >= 1; groups with no
// successfully embedded images are never stored.
type Group struct {
	Label       string
	Gender      GenderTag
	SampleCount int
	Centroid    []float32
}

// Snapshot is one complete build result. Snapshots are immutable once
// published; a rebuild replaces the whole snapshot, never patches one.
type Snapshot struct {
	State          State
	BuildID        string
	BuiltAt        time.Time
	Groups         []Group
	SampleFailures int // embeddings that failed and were skipped during the build
}

// Cache is the shared snapshot cell. Readers always observe the last
// complete snapshot; only the builder replaces it.
type Cache struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	buildMu  sync.Mutex // serializes builds
	building bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{snapshot: &Snapshot{State: StateEmpty}}
}

// Snapshot returns the last complete snapshot. Never nil.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// State reports the lifecycle state, surfacing "building" while a rebuild
// is in flight even though readers still see the previous snapshot.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.building {
		return StateBuilding
	}
	return c.snapshot.State
}

func (c *Cache) setBuilding(on bool) {
	c.mu.Lock()
	c.building = on
	c.mu.Unlock()
}

// replace publishes a new snapshot wholesale.
func (c *Cache) replace(s *Snapshot) {
	c.mu.Lock()
	c.snapshot = s
	c.building = false
	c.mu.Unlock()
}

// GenderFromLabel derives a group's gender tag from its display name.
// "female" is checked before "male" since the former contains the latter.
func GenderFromLabel(label string) GenderTag {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "female"):
		return GenderFemale
	case strings.Contains(lower, "male"):
		return GenderMale
	default:
		return GenderUnknown
	}
}
