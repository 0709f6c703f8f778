package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

func testContext(particles ...*particle.Particle) *Context {
	return &Context{Particles: particles, Diameter: 1.0, Radius: 0.5, Epsilon: 1e-6}
}

func TestDistanceProjectPullsTogether(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 1, particle.SOLID)
	pj := particle.New(vector.New(3, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	c := NewDistance(0, 1, 1.0)
	c.Project(ctx)

	assert.InDelta(t, 1.0, pi.Ep.Distance(pj.Ep), 1e-9, "rest length restored")
	assert.InDelta(t, 1.0, pi.Ep.X, 1e-9, "equal masses share the correction")
}

func TestDistanceProjectImmovableAnchor(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 0, particle.SOLID)
	pj := particle.New(vector.New(3, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	NewDistance(0, 1, 1.0).Project(ctx)

	assert.Equal(t, vector.New(0, 0), pi.Ep, "infinite-mass particle never moves")
	assert.InDelta(t, 1.0, pj.Ep.X, 1e-9)
}

func TestDistanceRows(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 1, particle.SOLID)
	pj := particle.New(vector.New(3, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	row, ok := NewDistance(0, 1, 1.0).Rows(ctx)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, row.C, 1e-9)
	assert.Len(t, row.Terms, 2)
}
