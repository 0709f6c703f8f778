package constraint

import "github.com/haldenlabs/pbd2d/vector"

// NewBoundary builds a BoundaryConstraint(i, plane, axis, isMin, stabilizing)
// projecting particle i out of a half-plane boundary by the configured
// particle radius. axis is 0 for x, 1 for y.
func NewBoundary(i int, plane float64, axis int, isMin, stabilizing bool) *Constraint {
	group := Contact
	if stabilizing {
		group = Stabilization
	}
	return &Constraint{
		Kind: KindBoundary, Group: group,
		I: i, Plane: plane, Axis: axis, IsMin: isMin, Stabilizing: stabilizing,
	}
}

func projectBoundary(ctx *Context, c *Constraint) {
	p := ctx.Particles[c.I]
	if p.IMass == 0 {
		return
	}

	if c.Axis == 0 {
		projectBoundaryAxis(ctx, c, p.Ep.X, func(v float64) { p.Ep.X = v }, func(v float64) { p.P.X = v })
	} else {
		projectBoundaryAxis(ctx, c, p.Ep.Y, func(v float64) { p.Ep.Y = v }, func(v float64) { p.P.Y = v })
	}
}

func projectBoundaryAxis(ctx *Context, c *Constraint, coord float64, setEp, setP func(float64)) {
	if c.IsMin {
		target := c.Plane + ctx.Radius
		if coord >= target {
			return
		}
		setEp(target)
		if c.Stabilizing {
			setP(target)
		}
		return
	}

	target := c.Plane - ctx.Radius
	if coord <= target {
		return
	}
	setEp(target)
	if c.Stabilizing {
		setP(target)
	}
}

func rowBoundary(ctx *Context, c *Constraint) (Row, bool) {
	p := ctx.Particles[c.I]
	if p.IMass == 0 {
		return Row{}, true
	}

	coord := p.Ep.X
	if c.Axis == 1 {
		coord = p.Ep.Y
	}

	var grad vector.Vector2D
	var value float64
	if c.IsMin {
		target := c.Plane + ctx.Radius
		value = coord - target
		if c.Axis == 0 {
			grad = vector.New(1, 0)
		} else {
			grad = vector.New(0, 1)
		}
	} else {
		target := c.Plane - ctx.Radius
		value = target - coord
		if c.Axis == 0 {
			grad = vector.New(-1, 0)
		} else {
			grad = vector.New(0, -1)
		}
	}

	if value >= 0 {
		return Row{}, true
	}

	return Row{C: value, Terms: []Term{{Index: c.I, Grad: grad}}}, true
}
