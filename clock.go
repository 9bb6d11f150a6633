package elector

import (
	"math/rand"
	"sync"
	"time"
)

// Clock is the core's source of time for election decisions, kept as a
// narrow interface so tests can supply deterministic time instead of
// sleeping on wall clock. The startup grace window tracked by Context is
// measured on the system clock instead.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

// NewSystemClock returns the default Clock.
func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// Rand is the core's only source of randomness. It is used exclusively for
// drawing the tie-break sleep duration.
type Rand interface {
	UniformDuration(min, max time.Duration) time.Duration
}

// seededRand is the production Rand, guarded by a mutex the same way rafty
// serializes access to its own *rand.Rand.
type seededRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRand returns a Rand seeded from seed. Nodes should each seed
// independently (e.g. from their MemberId and boot time) so tied members
// don't draw the same jitter.
func NewRand(seed int64) Rand {
	return &seededRand{src: rand.New(rand.NewSource(seed))}
}

func (r *seededRand) UniformDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	span := int64(max - min)
	return min + time.Duration(r.src.Int63n(span))
}
