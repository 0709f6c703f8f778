package constraint

import (
	"math"

	"github.com/haldenlabs/pbd2d/vector"
)

// NewFluid builds a TotalFluidConstraint enforcing rest density rho0 over
// the given member particle indices via SPH-style density constraints. It
// belongs to the STANDARD group.
func NewFluid(rho0 float64, indices []int) *Constraint {
	return &Constraint{Kind: KindFluid, Group: Standard, Density: rho0, Members: indices}
}

// NewGas builds a GasConstraint using the same SPH machinery as TotalFluid
// but with a typically lower rest density, producing expansive behavior.
// Gravity scaling by ALPHA for GAS-phase particles is applied by the
// simulation driver during force integration, not here.
func NewGas(rho0 float64, indices []int) *Constraint {
	return &Constraint{Kind: KindGas, Group: Standard, Density: rho0, Members: indices}
}

// smoothingK sets the SPH smoothing radius h = PARTICLE_DIAM * smoothingK.
const smoothingK = 3.0

// tensileCorrK, tensileCorrN, and tensileCorrDQ parameterize the artificial
// pressure term that prevents particle clustering (tensile instability
// correction), following Macklin & Müller's position-based fluids formula:
// scorr = -tensileCorrK * (W(r,h)/W(tensileCorrDQ*h,h))^tensileCorrN.
const (
	tensileCorrK  = 0.1
	tensileCorrN  = 4.0
	tensileCorrDQ = 0.2
)

func poly6(r, h float64) float64 {
	if r < 0 || r > h {
		return 0
	}
	h2, r2 := h*h, r*r
	diff := h2 - r2
	return (315.0 / (64.0 * math.Pi * math.Pow(h, 9))) * diff * diff * diff
}

// spikyGradient returns grad_i W_spiky(p_i - p_j, h) for delta = p_i - p_j.
func spikyGradient(delta vector.Vector2D, h float64) vector.Vector2D {
	r := delta.Length()
	if r <= 0 || r > h {
		return vector.Vector2D{}
	}
	coeff := -45.0 / (math.Pi * math.Pow(h, 6)) * (h - r) * (h - r) / r
	return delta.Scale(coeff)
}

func projectDensity(ctx *Context, c *Constraint) {
	n := len(c.Members)
	if n == 0 {
		return
	}
	h := ctx.Diameter * smoothingK

	lambdas := make([]float64, n)
	wCorrBase := poly6(tensileCorrDQ*h, h)

	for a, idx := range c.Members {
		pi := ctx.Particles[idx]
		var rho float64
		var gradSumSq float64
		var selfGrad vector.Vector2D

		for _, jdx := range c.Members {
			if jdx == idx {
				rho += poly6(0, h)
				continue
			}
			pj := ctx.Particles[jdx]
			delta := pi.Ep.Sub(pj.Ep)
			r := delta.Length()
			rho += poly6(r, h)

			grad := spikyGradient(delta, h).Scale(1.0 / c.Density)
			gradSumSq += grad.LengthSquared()
			selfGrad = selfGrad.Add(grad)
		}

		gradSumSq += selfGrad.LengthSquared()

		constraintVal := rho/c.Density - 1.0
		lambdas[a] = -constraintVal / (gradSumSq + ctx.Epsilon)
	}

	// This loop applies each member's displacement to ctx.Particles[idx].Ep as
	// soon as it is computed, so a member later in c.Members reads the already-
	// moved Ep of an earlier one rather than its pre-loop position: Gauss-Seidel
	// across members, not the Jacobi all-at-once sweep PBF literature uses for
	// this step. Spec-permitted, but it makes the result depend on c.Members
	// order.
	for a, idx := range c.Members {
		pi := ctx.Particles[idx]
		var delta vector.Vector2D

		for b, jdx := range c.Members {
			if jdx == idx {
				continue
			}
			pj := ctx.Particles[jdx]
			d := pi.Ep.Sub(pj.Ep)
			r := d.Length()

			scorr := 0.0
			if wCorrBase > ctx.Epsilon {
				ratio := poly6(r, h) / wCorrBase
				scorr = -tensileCorrK * math.Pow(ratio, tensileCorrN)
			}

			grad := spikyGradient(d, h)
			delta = delta.Add(grad.Scale(lambdas[a] + lambdas[b] + scorr))
		}

		if pi.IMass == 0 {
			continue
		}
		pi.Ep = pi.Ep.Add(delta.Scale(1.0 / c.Density))
	}
}
