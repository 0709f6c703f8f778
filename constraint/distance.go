package constraint

// NewDistance builds a bilateral DistanceConstraint(i, j, restLen) in the
// STANDARD group.
func NewDistance(i, j int, restLen float64) *Constraint {
	return &Constraint{Kind: KindDistance, Group: Standard, I: i, J: j, RestLen: restLen}
}

func projectDistance(ctx *Context, c *Constraint) {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]

	wSum := pi.IMass + pj.IMass
	if wSum == 0 {
		return
	}

	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()
	if dist < ctx.Epsilon {
		return
	}

	n := delta.Scale(1.0 / dist)
	diff := dist - c.RestLen
	corr := n.Scale(diff / wSum)

	pi.Ep = pi.Ep.Add(corr.Scale(pi.IMass))
	pj.Ep = pj.Ep.Sub(corr.Scale(pj.IMass))
}

func rowDistance(ctx *Context, c *Constraint) (Row, bool) {
	pi, pj := ctx.Particles[c.I], ctx.Particles[c.J]
	delta := pj.Ep.Sub(pi.Ep)
	dist := delta.Length()
	if dist < ctx.Epsilon {
		return Row{}, true
	}
	n := delta.Scale(1.0 / dist)
	return Row{
		C: dist - c.RestLen,
		Terms: []Term{
			{Index: c.I, Grad: n.Neg()},
			{Index: c.J, Grad: n},
		},
	}, true
}
