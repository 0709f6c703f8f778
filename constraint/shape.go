package constraint

import (
	"math"

	"github.com/haldenlabs/pbd2d/vector"
)

// NewShape builds a TotalShapeConstraint owned by the body at bodyIndex.
// It belongs to the SHAPE group and, unlike CONTACT and STABILIZATION
// constraints, persists for the body's lifetime.
func NewShape(bodyIndex int) *Constraint {
	return &Constraint{Kind: KindShape, Group: Shape, BodyIndex: bodyIndex}
}

// projectShape matches the body's current particle configuration to its
// initial reference offsets via the optimal translation + rotation (shape
// matching). The rotation is extracted with the closed-form 2D formula
// rather than a general polar decomposition or SVD: it is exact,
// branch-free for 2D, and avoids a dependency on a full linear-algebra
// library for a 2x2 system.
func projectShape(ctx *Context, c *Constraint) {
	b := ctx.Bodies[c.BodyIndex]

	var com vector.Vector2D
	var totalMass float64
	for _, idx := range b.Particles {
		p := ctx.Particles[idx]
		if p.IMass == 0 {
			continue
		}
		mass := 1.0 / p.IMass
		com = com.Add(p.Ep.Scale(mass))
		totalMass += mass
	}
	if totalMass == 0 {
		return
	}
	com = com.Scale(1.0 / totalMass)

	var a11, a12, a21, a22 float64
	for _, idx := range b.Particles {
		p := ctx.Particles[idx]
		if p.IMass == 0 {
			continue
		}
		mass := 1.0 / p.IMass
		d := p.Ep.Sub(com)
		r := b.Rs[idx]
		a11 += mass * d.X * r.X
		a12 += mass * d.X * r.Y
		a21 += mass * d.Y * r.X
		a22 += mass * d.Y * r.Y
	}

	theta := math.Atan2(a21-a12, a11+a22)
	s, cth := math.Sin(theta), math.Cos(theta)

	for _, idx := range b.Particles {
		p := ctx.Particles[idx]
		if p.IMass == 0 {
			continue
		}
		r := b.Rs[idx]
		rotated := vector.New(r.X*cth-r.Y*s, r.X*s+r.Y*cth)
		p.Ep = com.Add(rotated)
	}

	b.COM = com
	b.Rotation = theta
}
