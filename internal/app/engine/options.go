package engine

import "time"

// Options tunes the engine's snapshot cadence.
type Options struct {
	// SnapshotInterval is how often the snapshot manager wakes up to
	// check whether a new snapshot is due.
	SnapshotInterval time.Duration

	// SnapshotOffsetDelta is the number of intake offsets that must have
	// been processed since the last snapshot before a new one is taken.
	SnapshotOffsetDelta int64
}

// DefaultEngineOptions returns the snapshot cadence used in production.
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotInterval:    30 * time.Second,
		SnapshotOffsetDelta: 1000,
	}
}
