package sim

import (
	"sync"

	"github.com/haldenlabs/pbd2d/constraint"
)

// arena is the per-tick allocator for ephemeral CONTACT and STABILIZATION
// constraints, backed by a sync.Pool: a constraint discovered during
// contact discovery is taken from the pool instead of freshly allocated,
// and returned at tick teardown, avoiding one allocation per candidate
// pair per tick.
type arena struct {
	pool sync.Pool
}

func newArena() *arena {
	return &arena{
		pool: sync.Pool{
			New: func() any { return new(constraint.Constraint) },
		},
	}
}

// get returns a zeroed constraint ready for the caller to populate.
func (a *arena) get() *constraint.Constraint {
	c := a.pool.Get().(*constraint.Constraint)
	*c = constraint.Constraint{}
	return c
}

// release returns every constraint in cs to the pool. Called at tick
// teardown for the CONTACT and STABILIZATION lists only — SHAPE and
// STANDARD constraints are persistent and never touch the arena.
func (a *arena) release(cs []*constraint.Constraint) {
	for _, c := range cs {
		a.pool.Put(c)
	}
}
