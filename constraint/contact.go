package constraint

import "github.com/haldenlabs/pbd2d/vector"

// NewContact builds a non-friction unilateral ContactConstraint(i, j) used
// when at least one party is non-solid.
func NewContact(i, j int) *Constraint {
	return &Constraint{Kind: KindContact, Group: Contact, I: i, J: j}
}

func projectContact(ctx *Context, c *Constraint) {
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

	penetration := dist - ctx.Diameter
	if penetration >= 0 {
		return
	}

	corrMag := -penetration / wSum
	pi.Ep = pi.Ep.Sub(n.Scale(corrMag * wi))
	pj.Ep = pj.Ep.Add(n.Scale(corrMag * wj))
}

func rowContact(ctx *Context, c *Constraint) (Row, bool) {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]
	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()
	if dist < ctx.Epsilon {
		return Row{}, true
	}

	penetration := dist - ctx.Diameter
	if penetration >= 0 {
		return Row{}, true
	}

	n := delta.Scale(1.0 / dist)
	return Row{
		C: penetration,
		Terms: []Term{
			{Index: c.I, Grad: n.Neg()},
			{Index: c.J, Grad: n},
		},
	}, true
}
