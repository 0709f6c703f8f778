// Package body defines the rigid aggregate: an ordered set of particle
// indices sharing a center of mass, per-particle SDF data, and the shape
// constraint that holds the aggregate's form.
package body

import "github.com/haldenlabs/pbd2d/vector"

// SDF carries, per rigid particle, the inward-pointing surface normal and the
// signed distance from that particle to the body's surface. RigidContact
// constraints use this to pick a contact normal from body geometry rather
// than the naive pair direction.
type SDF struct {
	Normal   vector.Vector2D
	Distance float64
}

// Body is a rigid aggregate of particles. The particles themselves are owned
// by the simulation's particle slice; Body stores indices into it, never
// pointers, so the slice can grow without invalidating references.
type Body struct {
	Particles []int       // indices into the simulation's particle slice
	SDF       map[int]SDF // per-particle-index SDF data
	Rs        map[int]vector.Vector2D // body-local reference offsets r_i, keyed by particle index

	COM      vector.Vector2D
	IMass    float64 // 1 / sum(1/p.IMass)
	Rotation float64 // current absolute orientation (radians) from the initial frame

	// Shape is the index, within the simulation's SHAPE constraint list, of
	// this body's owned TotalShape constraint. -1 until attached.
	Shape int
}

// New returns an empty body ready to be populated by scene.CreateRigidBody.
func New() *Body {
	return &Body{
		SDF:   make(map[int]SDF),
		Rs:    make(map[int]vector.Vector2D),
		Shape: -1,
	}
}

// UpdateCOM recomputes the body's center of mass from the current (or
// predicted) positions of its particles, using getPos to select which
// position field to read.
func (b *Body) UpdateCOM(getPos func(idx int) vector.Vector2D, getIMass func(idx int) float64) {
	var com vector.Vector2D
	var totalMass float64
	for _, idx := range b.Particles {
		im := getIMass(idx)
		if im == 0 {
			continue
		}
		mass := 1.0 / im
		com = com.Add(getPos(idx).Scale(mass))
		totalMass += mass
	}
	if totalMass > 0 {
		com = com.Scale(1.0 / totalMass)
	}
	b.COM = com
}

// ComputeRs records each particle's offset from the current center of mass
// as its body-local reference vector r_i, used thereafter as the rest pose
// for shape matching.
func (b *Body) ComputeRs(getPos func(idx int) vector.Vector2D) {
	for _, idx := range b.Particles {
		b.Rs[idx] = getPos(idx).Sub(b.COM)
	}
}
