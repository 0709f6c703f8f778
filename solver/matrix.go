package solver

import (
	"math"

	"github.com/haldenlabs/pbd2d/constraint"
)

// diagRegularization is added to every diagonal entry of the assembled
// system before factoring it, guarding against the near-singular matrices a
// degenerate row (two coincident particles, a zero-gradient constraint)
// would otherwise produce.
const diagRegularization = 1e-9

// solveBatched assembles J M⁻¹ Jᵀ λ = −C over constraints that expose a Row,
// projects any that don't directly, solves the dense system with a
// Cholesky factorization, and applies the resulting Δep = M⁻¹ Jᵀ λ to every
// particle referenced by a row. RigidContact rows only encode the
// non-penetration condition; their friction adjustment runs as a separate
// pass once the normal correction has been applied.
func (s *Solver) solveBatched(ctx *constraint.Context, constraints []*constraint.Constraint) {
	if len(s.mInv) != len(ctx.Particles) {
		s.SetupM(ctx)
	}

	rows := s.rowBuf[:0]
	var direct []*constraint.Constraint
	var rigid []*constraint.Constraint

	for _, c := range constraints {
		row, ok := c.Rows(ctx)
		if !ok {
			direct = append(direct, c)
			continue
		}
		if len(row.Terms) == 0 {
			continue
		}
		rows = append(rows, row)
		if c.Kind == constraint.KindRigidContact {
			rigid = append(rigid, c)
		}
	}
	s.rowBuf = rows

	for _, c := range direct {
		c.Project(ctx)
	}

	m := len(rows)
	if m == 0 {
		return
	}

	if cap(s.matBuf) < m*m {
		s.matBuf = make([]float64, m*m)
	}
	a := s.matBuf[:m*m]
	for i := range a {
		a[i] = 0
	}

	if cap(s.rhsBuf) < m {
		s.rhsBuf = make([]float64, m)
	}
	rhs := s.rhsBuf[:m]
	if cap(s.lambdaBuf) < m {
		s.lambdaBuf = make([]float64, m)
	}
	lambda := s.lambdaBuf[:m]

	for i := 0; i < m; i++ {
		rhs[i] = -rows[i].C
		for _, ti := range rows[i].Terms {
			wi := s.mInv[ti.Index]
			if wi == 0 {
				continue
			}
			for j := 0; j < m; j++ {
				for _, tj := range rows[j].Terms {
					if tj.Index != ti.Index {
						continue
					}
					a[i*m+j] += wi * ti.Grad.Dot(tj.Grad)
				}
			}
		}
		a[i*m+i] += diagRegularization
	}

	if !choleskySolve(a, rhs, lambda, m) {
		// Singular system: fall back to projecting every constraint in
		// this group directly rather than leaving particles unmoved.
		for _, c := range constraints {
			c.Project(ctx)
		}
		return
	}

	for i := 0; i < m; i++ {
		li := lambda[i]
		if li == 0 {
			continue
		}
		for _, t := range rows[i].Terms {
			w := s.mInv[t.Index]
			if w == 0 {
				continue
			}
			p := ctx.Particles[t.Index]
			p.Ep = p.Ep.Add(t.Grad.Scale(w * li))
		}
	}

	for _, c := range rigid {
		c.ApplyFriction(ctx)
	}
}

// choleskySolve factors the m×m symmetric matrix a (row-major) as L Lᵀ and
// solves a·x = b in place into x. Returns false if a diagonal pivot is
// non-positive, meaning the system is not (numerically) SPD.
func choleskySolve(a []float64, b, x []float64, m int) bool {
	l := make([]float64, m*m)

	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i*m+j]
			for k := 0; k < j; k++ {
				sum -= l[i*m+k] * l[j*m+k]
			}
			if i == j {
				if sum <= 0 {
					return false
				}
				l[i*m+j] = math.Sqrt(sum)
			} else {
				l[i*m+j] = sum / l[j*m+j]
			}
		}
	}

	y := make([]float64, m)
	for i := 0; i < m; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i*m+k] * y[k]
		}
		y[i] = sum / l[i*m+i]
	}

	for i := m - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < m; k++ {
			sum -= l[k*m+i] * x[k]
		}
		x[i] = sum / l[i*m+i]
	}

	return true
}
