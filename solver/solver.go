// Package solver implements the two interchangeable projection strategies:
// an iterative Gauss–Seidel projector and a batched matrix projector that
// assembles and solves a linearized system over a constraint group.
package solver

import (
	"github.com/haldenlabs/pbd2d/constraint"
)

// Mode selects a Solver's projection strategy, fixed at construction.
type Mode int

const (
	Iterative Mode = iota
	Batched
)

// Solver projects one constraint group per call to SolveAndUpdate. Two
// instances are kept by the simulation driver — one for CONTACT, one for
// STANDARD — because the groups differ in sparsity and pre-sized scratch
// buffers should not be shared between them.
type Solver struct {
	mode       Mode
	massScaled bool // whether M^-1 uses IMass*SM (contact solver) or plain IMass

	mInv []float64 // cached per-particle inverse-mass diagonal, from SetupM

	rowBuf   []constraint.Row // scratch, reused across calls
	matBuf   []float64        // scratch m*m dense matrix, reused across calls
	rhsBuf   []float64
	lambdaBuf []float64
}

// New constructs a solver in the given mode. massScaled only matters in
// Batched mode and should be true for the contact solver, false for the
// standard solver, so contacts weight corrections by the per-particle mass
// scale while density and shape constraints use plain inverse mass.
func New(mode Mode, massScaled bool) *Solver {
	return &Solver{mode: mode, massScaled: massScaled}
}

// SetupM captures M⁻¹, the diagonal inverse-mass matrix, from the current
// particle state. Called once per tick before the contact/standard solvers
// run.
func (s *Solver) SetupM(ctx *constraint.Context) {
	if cap(s.mInv) < len(ctx.Particles) {
		s.mInv = make([]float64, len(ctx.Particles))
	}
	s.mInv = s.mInv[:len(ctx.Particles)]
	for i, p := range ctx.Particles {
		if s.massScaled {
			s.mInv[i] = p.IMass * p.SM
		} else {
			s.mInv[i] = p.IMass
		}
	}
}

// SetupSizes preallocates the Jacobian row and matrix scratch buffers for a
// group of the given size, so SolveAndUpdate does not reallocate mid-tick
// when the group's size is stable across ticks.
func (s *Solver) SetupSizes(particleCount int, constraints []*constraint.Constraint) {
	n := len(constraints)
	if cap(s.rowBuf) < n {
		s.rowBuf = make([]constraint.Row, 0, n)
	}
	if cap(s.matBuf) < n*n {
		s.matBuf = make([]float64, n*n)
	}
	if cap(s.rhsBuf) < n {
		s.rhsBuf = make([]float64, n)
	}
	if cap(s.lambdaBuf) < n {
		s.lambdaBuf = make([]float64, n)
	}
}

// SolveAndUpdate runs one projection pass over constraints and writes the
// result back into ctx's particles. In Iterative mode this is a single
// Gauss–Seidel sweep (each Project call sees prior calls' updates within the
// sweep); in Batched mode it assembles and solves the linearized system
// once and applies the resulting correction to every particle at once.
func (s *Solver) SolveAndUpdate(ctx *constraint.Context, constraints []*constraint.Constraint) {
	if len(constraints) == 0 {
		return
	}

	if s.mode == Iterative {
		for _, c := range constraints {
			c.Project(ctx)
		}
		return
	}

	s.solveBatched(ctx, constraints)
}
