package constraint

import (
	"math"

	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

// NewRigidContact builds a unilateral non-penetration constraint with
// Coulomb friction between two SOLID particles. Both indices
// must reference particles whose Body is >= 0 for SDF-based normal
// selection; if either lacks a body the naive pair direction is used.
func NewRigidContact(i, j int, group Group) *Constraint {
	return &Constraint{Kind: KindRigidContact, Group: group, I: i, J: j}
}

func projectRigidContact(ctx *Context, c *Constraint) {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]

	wi := pi.IMass * pi.SM
	wj := pj.IMass * pj.SM
	wSum := wi + wj
	if wSum == 0 {
		return
	}

	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()

	naive := vector.New(1, 0)
	if dist >= ctx.Epsilon {
		naive = delta.Scale(1.0 / dist)
	}

	n := rigidContactNormal(ctx, c, naive)

	penetration := delta.Dot(n) - ctx.Diameter
	if dist < ctx.Epsilon {
		penetration = -ctx.Diameter
	}
	if penetration >= 0 {
		return
	}

	corrMag := -penetration / wSum
	corrI := n.Scale(corrMag * wi)
	corrJ := n.Scale(corrMag * wj)
	pi.Ep = pi.Ep.Sub(corrI)
	pj.Ep = pj.Ep.Add(corrJ)
	if c.Group == Stabilization {
		pi.P = pi.P.Sub(corrI)
		pj.P = pj.P.Add(corrJ)
	}

	applyRigidContactFriction(pi, pj, n, wi, wj, wSum)
}

// rigidContactNormal picks the contact normal from the owning body's SDF
// data: if both particles belong to (different) bodies, the particle whose
// SDF distance to its own body's surface is smaller is in shallower
// penetration, so its body's inward normal — rotated into world space by the
// body's current orientation, negated to point outward, and oriented to
// agree with the naive pair direction — is used. Falls back to the naive
// direction when SDF data is unavailable.
func rigidContactNormal(ctx *Context, c *Constraint, naive vector.Vector2D) vector.Vector2D {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]

	if pi.Body < 0 || pj.Body < 0 || pi.Body >= len(ctx.Bodies) || pj.Body >= len(ctx.Bodies) {
		return naive
	}

	bi, bj := ctx.Bodies[pi.Body], ctx.Bodies[pj.Body]
	sdfI, okI := bi.SDF[c.I]
	sdfJ, okJ := bj.SDF[c.J]

	var chosen vector.Vector2D
	switch {
	case okI && okJ:
		if sdfI.Distance <= sdfJ.Distance {
			chosen = rotate(sdfI.Normal, bi.Rotation).Neg()
		} else {
			chosen = rotate(sdfJ.Normal, bj.Rotation).Neg()
		}
	case okI:
		chosen = rotate(sdfI.Normal, bi.Rotation).Neg()
	case okJ:
		chosen = rotate(sdfJ.Normal, bj.Rotation).Neg()
	default:
		return naive
	}

	chosen = chosen.Normalize()
	if chosen.LengthSquared() == 0 {
		return naive
	}
	if chosen.Dot(naive) < 0 {
		chosen = chosen.Neg()
	}
	return chosen
}

func rotate(v vector.Vector2D, theta float64) vector.Vector2D {
	s, cth := math.Sin(theta), math.Cos(theta)
	return vector.New(v.X*cth-v.Y*s, v.X*s+v.Y*cth)
}

// applyRigidContactFriction implements Coulomb friction over the
// displacement produced by the normal projection just applied: decompose
// the relative displacement accrued so far this tick into normal and
// tangential components, and clamp the tangential component to the kinetic
// friction cone when it exceeds the static cone.
func applyRigidContactFriction(pi, pj *particle.Particle, n vector.Vector2D, wi, wj, wSum float64) {
	dxi := pi.Ep.Sub(pi.P)
	dxj := pj.Ep.Sub(pj.P)
	relDx := dxj.Sub(dxi)

	dxn := n.Scale(relDx.Dot(n))
	dxt := relDx.Sub(dxn)

	dxtLen := dxt.Length()
	dxnLen := dxn.Length()
	if dxtLen == 0 {
		return
	}

	muS := maxF(pi.SFriction, pj.SFriction)
	muK := maxF(pi.KFriction, pj.KFriction)

	if dxtLen <= muS*dxnLen {
		return // static regime: leave tangential displacement as-is
	}

	clampedLen := muK * dxnLen
	excess := dxtLen - clampedLen
	if excess <= 0 || wSum == 0 {
		return
	}

	corrT := dxt.Scale(1.0 / dxtLen).Scale(excess)
	pi.Ep = pi.Ep.Add(corrT.Scale(wi / wSum))
	pj.Ep = pj.Ep.Sub(corrT.Scale(wj / wSum))
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func rowRigidContact(ctx *Context, c *Constraint) (Row, bool) {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]
	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()
	if dist < ctx.Epsilon {
		return Row{}, true
	}

	naive := delta.Scale(1.0 / dist)
	n := rigidContactNormal(ctx, c, naive)

	penetration := delta.Dot(n) - ctx.Diameter
	if penetration >= 0 {
		return Row{}, true
	}

	return Row{
		C: penetration,
		Terms: []Term{
			{Index: c.I, Grad: n.Neg()},
			{Index: c.J, Grad: n},
		},
	}, true
}

// ApplyFriction runs only the Coulomb friction adjustment of a RigidContact
// constraint, for use by the batched solver after the matrix solve has
// already satisfied the non-penetration row: the friction decomposition is
// not itself part of the assembled linear system.
func (c *Constraint) ApplyFriction(ctx *Context) {
	if c.Kind != KindRigidContact {
		return
	}
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]

	wi := pi.IMass * pi.SM
	wj := pj.IMass * pj.SM
	wSum := wi + wj
	if wSum == 0 {
		return
	}

	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()
	n := vector.New(1, 0)
	if dist >= ctx.Epsilon {
		n = delta.Scale(1.0 / dist)
	}

	applyRigidContactFriction(pi, pj, n, wi, wj, wSum)
}
