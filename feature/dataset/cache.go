package dataset

import (
	"context"
	"sync"
	"time"

	"data-mirror/core/engine"

	"golang.org/x/sync/singleflight"
)

// Snapshot holds a loaded dataset together with its freshness metadata.
type Snapshot struct {
	// Records is the dataset at the time the snapshot was built.
	Records []engine.Record

	// Built is the timestamp when this snapshot was loaded.
	Built time.Time

	// TTL is the time-to-live for this snapshot.
	TTL time.Duration
}

// IsExpired returns true if this snapshot has expired based on its TTL.
func (s *Snapshot) IsExpired() bool {
	if s.TTL == 0 {
		return true // No caching
	}
	return time.Since(s.Built) > s.TTL
}

// snapshotStore holds all dataset snapshots keyed by provider name.
type snapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	sf        singleflight.Group
}

// globalSnapshotStore is the singleton store for all cached loads.
var globalSnapshotStore = &snapshotStore{
	snapshots: make(map[string]*Snapshot),
}

// LoadCached loads the provider's dataset through the snapshot cache.
// A fresh snapshot is served directly; an expired or missing one is rebuilt,
// with singleflight collapsing concurrent rebuilds of the same provider.
func LoadCached(ctx context.Context, p Provider, ttl time.Duration) ([]engine.Record, error) {
	key := p.Name()

	// Fast path: check if a fresh snapshot exists
	globalSnapshotStore.mu.RLock()
	snap, exists := globalSnapshotStore.snapshots[key]
	globalSnapshotStore.mu.RUnlock()

	if exists && !snap.IsExpired() {
		return snap.Records, nil
	}

	// Slow path: rebuild using singleflight to prevent stampedes
	result, err, _ := globalSnapshotStore.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		globalSnapshotStore.mu.RLock()
		snap, exists := globalSnapshotStore.snapshots[key]
		globalSnapshotStore.mu.RUnlock()

		if exists && !snap.IsExpired() {
			return snap, nil
		}

		records, err := p.Load(ctx)
		if err != nil {
			return nil, err
		}

		newSnap := &Snapshot{
			Records: records,
			Built:   time.Now(),
			TTL:     ttl,
		}

		globalSnapshotStore.mu.Lock()
		globalSnapshotStore.snapshots[key] = newSnap
		globalSnapshotStore.mu.Unlock()

		return newSnap, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*Snapshot).Records, nil
}

// Invalidate removes the cached snapshot for the given provider name.
// Apply operations call this so the next plan sees fresh data.
func Invalidate(name string) {
	globalSnapshotStore.mu.Lock()
	delete(globalSnapshotStore.snapshots, name)
	globalSnapshotStore.mu.Unlock()
}
