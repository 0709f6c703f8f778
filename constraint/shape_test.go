package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

func TestShapeProjectRestPoseIsStable(t *testing.T) {
	p0 := particle.New(vector.New(-1, 0), 1, particle.SOLID)
	p1 := particle.New(vector.New(1, 0), 1, particle.SOLID)
	p0.Ep, p1.Ep = p0.P, p1.P

	b := body.New()
	b.Particles = []int{0, 1}
	b.Rs[0] = vector.New(-1, 0)
	b.Rs[1] = vector.New(1, 0)

	ctx := &Context{Particles: []*particle.Particle{p0, p1}, Bodies: []*body.Body{b}, Diameter: 1.0, Radius: 0.5, Epsilon: 1e-6}
	NewShape(0).Project(ctx)

	assert.InDelta(t, -1, p0.Ep.X, 1e-9, "already-rest configuration is unchanged")
	assert.InDelta(t, 1, p1.Ep.X, 1e-9)
	assert.InDelta(t, 0, b.Rotation, 1e-9)
}

func TestShapeProjectRecoversRotation(t *testing.T) {
	// Body rotated 90 degrees: the rest pose (-1,0)/(1,0) becomes (0,-1)/(0,1).
	p0 := particle.New(vector.New(0, -1), 1, particle.SOLID)
	p1 := particle.New(vector.New(0, 1), 1, particle.SOLID)
	p0.Ep, p1.Ep = p0.P, p1.P

	b := body.New()
	b.Particles = []int{0, 1}
	b.Rs[0] = vector.New(-1, 0)
	b.Rs[1] = vector.New(1, 0)

	ctx := &Context{Particles: []*particle.Particle{p0, p1}, Bodies: []*body.Body{b}, Diameter: 1.0, Radius: 0.5, Epsilon: 1e-6}
	NewShape(0).Project(ctx)

	assert.InDelta(t, math.Pi/2, math.Abs(b.Rotation), 1e-9, "rotation recovered via shape matching")
}

func TestShapeProjectSkipsImmovable(t *testing.T) {
	p0 := particle.New(vector.New(-1, 0), 0, particle.SOLID)
	p1 := particle.New(vector.New(5, 5), 1, particle.SOLID)
	p0.Ep, p1.Ep = p0.P, p1.P

	b := body.New()
	b.Particles = []int{0, 1}
	b.Rs[0] = vector.New(-1, 0)
	b.Rs[1] = vector.New(1, 0)

	ctx := &Context{Particles: []*particle.Particle{p0, p1}, Bodies: []*body.Body{b}, Diameter: 1.0, Radius: 0.5, Epsilon: 1e-6}
	NewShape(0).Project(ctx)

	assert.Equal(t, vector.New(-1, 0), p0.Ep, "infinite-mass particle is excluded from the matching fit")
}
