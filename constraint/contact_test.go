package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

func TestContactProjectSeparatesOverlap(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 1, particle.FLUID)
	pj := particle.New(vector.New(0.5, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	NewContact(0, 1).Project(ctx)

	assert.InDelta(t, 1.0, pi.Ep.Distance(pj.Ep), 1e-9, "separated to the particle diameter")
}

func TestContactProjectNoOverlapNoop(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 1, particle.FLUID)
	pj := particle.New(vector.New(2, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	NewContact(0, 1).Project(ctx)

	assert.Equal(t, vector.New(2, 0), pj.Ep, "particles already clear of each other are untouched")
}

func TestContactRows(t *testing.T) {
	pi := particle.New(vector.New(0, 0), 1, particle.FLUID)
	pj := particle.New(vector.New(0.5, 0), 1, particle.SOLID)
	pi.Ep, pj.Ep = pi.P, pj.P

	ctx := testContext(pi, pj)
	row, ok := NewContact(0, 1).Rows(ctx)
	assert.True(t, ok)
	assert.InDelta(t, -0.5, row.C, 1e-9)
}
