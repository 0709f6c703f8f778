// Package sim implements the simulation driver: the tick pipeline that
// predicts positions, discovers contacts, runs the optional stabilization
// pass, iterates the solver, recovers velocities, and tears down ephemeral
// constraints.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/config"
	"github.com/haldenlabs/pbd2d/constraint"
	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/pbdgrid"
	"github.com/haldenlabs/pbd2d/scene"
	"github.com/haldenlabs/pbd2d/solver"
	"github.com/haldenlabs/pbd2d/vector"
)

// ParticleView is the read-only projection of a particle the renderer
// collaborator consumes: position, phase, body id, immovable?
type ParticleView struct {
	Pos       vector.Vector2D
	Phase     particle.Phase
	Body      int
	Immovable bool
}

// BodyView is the read-only projection of a rigid body for outline/debug
// drawing.
type BodyView struct {
	Particles []int
	COM       vector.Vector2D
	Rotation  float64
}

// GlobalView is the read-only projection of a persistent constraint for the
// renderer's draw() capability.
type GlobalView struct {
	Kind  constraint.Kind
	Group constraint.Group
}

// Simulation owns every particle and body, the persistent SHAPE/STANDARD
// constraint lists, and the two solver instances that project CONTACT and
// STANDARD groups each tick.
type Simulation struct {
	particles []*particle.Particle
	bodies    []*body.Body

	groups map[constraint.Group][]*constraint.Constraint

	domain  scene.Domain
	gravity vector.Vector2D

	cfg *config.Config

	contactSolver  *solver.Solver
	standardSolver *solver.Solver

	arena *arena
	rng   *rand.Rand

	// grid is the optional uniform-grid broad phase, used by contact
	// discovery instead of the naive O(N^2) scan when cfg.UseBroadphaseGrid
	// is set. Its cell size equals the particle diameter, the interaction
	// radius contact discovery tests against, which guarantees every pair
	// within that distance falls in the same or an adjacent cell.
	grid *pbdgrid.Grid

	clickPoint vector.Vector2D
	viewW      int
	viewH      int
}

// New constructs an empty simulation under the given tuning configuration,
// an explicit record rather than process-wide globals. Call Init to
// populate it with a demo scene before ticking.
func New(cfg *config.Config) *Simulation {
	return &Simulation{
		cfg:            cfg,
		groups:         make(map[constraint.Group][]*constraint.Constraint),
		contactSolver:  solver.New(solverModeOf(cfg), true),
		standardSolver: solver.New(solverModeOf(cfg), false),
		arena:          newArena(),
		rng:            rand.New(rand.NewSource(1)),
		grid:           pbdgrid.New(cfg.ParticleDiam),
	}
}

func solverModeOf(cfg *config.Config) solver.Mode {
	if cfg.SolverMode == config.Batched {
		return solver.Batched
	}
	return solver.Iterative
}

// Init clears the simulation and builds the demo scene named by tag, one
// of eight preset scene tags.
func (s *Simulation) Init(tag scene.Tag) error {
	s.particles = nil
	s.bodies = nil
	s.groups = make(map[constraint.Group][]*constraint.Constraint)
	s.gravity = vector.New(0, -9.8)

	b := scene.NewBuilder(&s.particles, &s.bodies, s.groups, s.cfg.ParticleDiam, s.rng)
	result, err := scene.Build(b, tag)
	if err != nil {
		return fmt.Errorf("sim: building scene %v: %w", tag, err)
	}

	s.domain = result.Domain
	s.gravity = result.Gravity

	s.contactSolver.SetupM(s.context())
	s.standardSolver.SetupM(s.context())
	return nil
}

func (s *Simulation) context() *constraint.Context {
	return &constraint.Context{
		Particles: s.particles,
		Bodies:    s.bodies,
		Diameter:  s.cfg.ParticleDiam,
		Radius:    s.cfg.ParticleDiam / 2,
		Epsilon:   s.cfg.Epsilon,
	}
}

// Tick advances the simulation by dt seconds, running the seven-phase
// pipeline exactly once. It returns an error only for dt <= 0; numerical
// degeneracies within the tick are absorbed silently.
func (s *Simulation) Tick(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("sim: tick requires dt > 0, got %v", dt)
	}

	ctx := s.context()

	// Phase 1: the persistent SHAPE and STANDARD lists already hold every
	// body's owned shape constraint and every global constraint; only the
	// ephemeral groups need to be assembled fresh.
	contactList := s.groups[constraint.Contact][:0]
	stabilizationList := s.groups[constraint.Stabilization][:0]

	// Phase 2: forces & prediction.
	for _, p := range s.particles {
		g := s.gravity
		if p.Phase == particle.GAS {
			g = g.Scale(s.cfg.Alpha)
		}
		p.V = p.V.Add(g.Scale(dt))
		p.Ep = p.Guess(dt)
		p.ScaleMass(s.domain.YMin)
	}

	s.contactSolver.SetupM(ctx)

	// Phase 3: contact discovery. considerPair runs the exact overlap test
	// and, on overlap, appends the matching contact (and stabilization)
	// constraint; it is shared by both candidate-pair sources below so the
	// two produce the same constraint set for the same input, per spec.md
	// §9 ("an implementation MAY add a uniform grid... it must not change
	// the set of generated constraints").
	n := len(s.particles)
	considerPair := func(i, j int) {
		pi, pj := s.particles[i], s.particles[j]

		if pi.IMass == 0 && pj.IMass == 0 {
			return
		}
		if pi.Phase == particle.SOLID && pj.Phase == particle.SOLID && pi.Body == pj.Body && pi.Body != -1 {
			return
		}

		dist := pi.Ep.Distance(pj.Ep)
		if dist >= s.cfg.ParticleDiam-s.cfg.Epsilon {
			return
		}

		switch {
		case pi.Phase == particle.SOLID && pj.Phase == particle.SOLID:
			c := s.arena.get()
			*c = *constraint.NewRigidContact(i, j, constraint.Contact)
			contactList = append(contactList, c)
			if s.cfg.UseStabilization {
				sc := s.arena.get()
				*sc = *constraint.NewRigidContact(i, j, constraint.Stabilization)
				stabilizationList = append(stabilizationList, sc)
			}
		case pi.Phase == particle.SOLID || pj.Phase == particle.SOLID:
			c := s.arena.get()
			*c = *constraint.NewContact(i, j)
			contactList = append(contactList, c)
		}
	}

	if s.cfg.UseBroadphaseGrid {
		s.grid.Clear()
		for i, p := range s.particles {
			s.grid.Insert(i, p.Ep)
		}
		for _, pair := range s.grid.CandidatePairs() {
			considerPair(pair[0], pair[1])
		}
	} else {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				considerPair(i, j)
			}
		}
	}

	for i := 0; i < n; i++ {
		contactList, stabilizationList = s.appendBoundaryConstraints(i, contactList, stabilizationList)
	}

	s.groups[constraint.Contact] = contactList
	s.groups[constraint.Stabilization] = stabilizationList

	s.contactSolver.SetupSizes(n, s.groups[constraint.Stabilization])

	// Phase 4: stabilization pass.
	if s.cfg.UseStabilization {
		for iter := 0; iter < s.cfg.StabilizationIterations; iter++ {
			stab := s.groups[constraint.Stabilization]
			if len(stab) == 0 {
				break
			}
			if solverModeOf(s.cfg) == solver.Iterative {
				for _, c := range stab {
					c.Project(ctx)
				}
			} else {
				s.contactSolver.SolveAndUpdate(ctx, stab)
			}
		}
	}

	// Phase 5: main solver pass.
	s.runMainSolverPass(ctx, n)

	// Phase 6: velocity recovery.
	for _, p := range s.particles {
		p.V = p.Ep.Sub(p.P).Scale(1.0 / dt)
		p.ConfirmGuess(s.cfg.SleepEpsilon)
	}

	// Phase 7: teardown — the ephemeral CONTACT and STABILIZATION
	// constraints return to the arena and both lists are emptied before the
	// tick returns; SHAPE and STANDARD remain.
	s.arena.release(s.groups[constraint.Contact])
	s.arena.release(s.groups[constraint.Stabilization])
	s.groups[constraint.Contact] = s.groups[constraint.Contact][:0]
	s.groups[constraint.Stabilization] = s.groups[constraint.Stabilization][:0]
	return nil
}

func (s *Simulation) runMainSolverPass(ctx *constraint.Context, n int) {
	mode := solverModeOf(s.cfg)

	if mode == solver.Iterative {
		for iter := 0; iter < s.cfg.SolverIterations; iter++ {
			for _, c := range s.groups[constraint.Contact] {
				c.Project(ctx)
			}
			for _, c := range s.groups[constraint.Standard] {
				c.Project(ctx)
			}
			for _, c := range s.groups[constraint.Shape] {
				c.Project(ctx)
			}
		}
		return
	}

	s.standardSolver.SetupM(ctx)
	s.contactSolver.SetupSizes(n, s.groups[constraint.Contact])
	s.standardSolver.SetupSizes(n, s.groups[constraint.Standard])

	for iter := 0; iter < s.cfg.SolverIterations; iter++ {
		s.contactSolver.SolveAndUpdate(ctx, s.groups[constraint.Contact])
		s.standardSolver.SolveAndUpdate(ctx, s.groups[constraint.Standard])
		for _, c := range s.groups[constraint.Shape] {
			c.Project(ctx)
		}
	}
}

func (s *Simulation) appendBoundaryConstraints(i int, contact, stabilization []*constraint.Constraint) ([]*constraint.Constraint, []*constraint.Constraint) {
	p := s.particles[i]
	rad := s.cfg.ParticleDiam / 2

	addAxis := func(coord, planeMin, planeMax float64, axis int) {
		switch {
		case coord < planeMin+rad:
			c := s.arena.get()
			*c = *constraint.NewBoundary(i, planeMin, axis, true, false)
			contact = append(contact, c)
			if s.cfg.UseStabilization {
				sc := s.arena.get()
				*sc = *constraint.NewBoundary(i, planeMin, axis, true, true)
				stabilization = append(stabilization, sc)
			}
		case coord > planeMax-rad:
			c := s.arena.get()
			*c = *constraint.NewBoundary(i, planeMax, axis, false, false)
			contact = append(contact, c)
			if s.cfg.UseStabilization {
				sc := s.arena.get()
				*sc = *constraint.NewBoundary(i, planeMax, axis, false, true)
				stabilization = append(stabilization, sc)
			}
		}
	}

	addAxis(p.Ep.X, s.domain.XMin, s.domain.XMax, 0)
	addAxis(p.Ep.Y, s.domain.YMin, s.domain.YMax, 1)

	return contact, stabilization
}

// ApplyRadialImpulse applies mousePressed(p): every particle's velocity
// gains a fixed-magnitude impulse directed toward p, exactly as the
// original's mousePressed (v += 7 * normalize(p - part.p)) does. A particle
// already past p keeps moving past it, so the net visual effect on a
// resting cluster is particles swarming toward, then scattering around,
// the click point rather than a uniform outward blast.
func (s *Simulation) ApplyRadialImpulse(p vector.Vector2D) {
	const impulseFactor = 7.0
	for _, part := range s.particles {
		to := p.Sub(part.P).Normalize()
		part.V = part.V.Add(to.Scale(impulseFactor))
	}
	s.clickPoint = p
}

// Resize records the renderer's viewport size; the physics core never
// consults it.
func (s *Simulation) Resize(w, h int) {
	s.viewW, s.viewH = w, h
}

// KineticEnergy returns the sum of 1/2 * m * v^2 over every finite-mass
// particle.
func (s *Simulation) KineticEnergy() float64 {
	var energy float64
	for _, p := range s.particles {
		if p.IMass == 0 {
			continue
		}
		energy += 0.5 * p.V.Dot(p.V) / p.IMass
	}
	return energy
}

// Particles returns a read-only snapshot of every particle's renderer-
// relevant state.
func (s *Simulation) Particles() []ParticleView {
	out := make([]ParticleView, len(s.particles))
	for i, p := range s.particles {
		out[i] = ParticleView{Pos: p.P, Phase: p.Phase, Body: p.Body, Immovable: p.IMass == 0}
	}
	return out
}

// Bodies returns a read-only snapshot of every rigid body.
func (s *Simulation) Bodies() []BodyView {
	out := make([]BodyView, len(s.bodies))
	for i, b := range s.bodies {
		particles := make([]int, len(b.Particles))
		copy(particles, b.Particles)
		out[i] = BodyView{Particles: particles, COM: b.COM, Rotation: b.Rotation}
	}
	return out
}

// Boundaries returns the simulation's rectangular domain.
func (s *Simulation) Boundaries() scene.Domain {
	return s.domain
}

// Globals returns a read-only snapshot of every persistent (SHAPE,
// STANDARD) constraint.
func (s *Simulation) Globals() []GlobalView {
	var out []GlobalView
	for _, group := range []constraint.Group{constraint.Shape, constraint.Standard} {
		for _, c := range s.groups[group] {
			out = append(out, GlobalView{Kind: c.Kind, Group: c.Group})
		}
	}
	return out
}
