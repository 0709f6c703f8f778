// Package scene builds initial particle/body/constraint configurations for
// the simulation driver — the allocation helpers (CreateRigidBody,
// CreateFluid, CreateGas) plus the eight demo scenes a caller selects by
// Tag.
package scene

import (
	"fmt"
	"math/rand"

	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/constraint"
	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

// Tag selects a demo scene.
type Tag int

const (
	Friction Tag = iota
	Granular
	Stacks
	Wall
	Pendulum
	Fluid
	FluidSolid
	Gas
)

func (t Tag) String() string {
	switch t {
	case Friction:
		return "FRICTION"
	case Granular:
		return "GRANULAR"
	case Stacks:
		return "STACKS"
	case Wall:
		return "WALL"
	case Pendulum:
		return "PENDULUM"
	case Fluid:
		return "FLUID"
	case FluidSolid:
		return "FLUID_SOLID"
	case Gas:
		return "GAS"
	default:
		return "UNKNOWN"
	}
}

// Domain is the rectangular simulation boundary.
type Domain struct {
	XMin, XMax, YMin, YMax float64
}

// Result is everything a scene builder fixes besides the particle/body/
// constraint state already written into the Builder: the domain a scene
// plays out in and the gravity vector it runs under (most scenes use
// (0,-9.8); fluid/gas scenes repeat the same value explicitly).
type Result struct {
	Domain  Domain
	Gravity vector.Vector2D
}

// Vertex describes one particle to be folded into a rigid body: its initial
// position, inverse mass, friction coefficients, and SDF data relative to
// the body's surface.
type Vertex struct {
	Pos       vector.Vector2D
	IMass     float64
	SFriction float64
	KFriction float64
	SDF       body.SDF
}

// Builder accumulates particles, bodies, and persistent constraints into the
// simulation's owning slices. It holds pointers rather than copies so scene
// functions mutate the simulation directly; it never imports the sim
// package, keeping the dependency one-directional (sim depends on scene,
// not the reverse).
type Builder struct {
	Particles *[]*particle.Particle
	Bodies    *[]*body.Body
	Groups    map[constraint.Group][]*constraint.Constraint

	Diameter float64
	Radius   float64

	Rng *rand.Rand
}

// NewBuilder constructs a Builder over the given owning slices and group
// map, all supplied by the simulation so Builder never allocates simulation
// state it doesn't hand back.
func NewBuilder(particles *[]*particle.Particle, bodies *[]*body.Body, groups map[constraint.Group][]*constraint.Constraint, diameter float64, rng *rand.Rand) *Builder {
	return &Builder{
		Particles: particles,
		Bodies:    bodies,
		Groups:    groups,
		Diameter:  diameter,
		Radius:    diameter / 2,
		Rng:       rng,
	}
}

// CreateRigidBody allocates particles for each vertex, wires their indices
// into a new Body, computes its center of mass and reference offsets, and
// attaches a TotalShapeConstraint to the SHAPE group. It fails if fewer
// than two vertices are given or any vertex has infinite mass (imass = 0).
func (b *Builder) CreateRigidBody(vertices []Vertex) (int, error) {
	if len(vertices) < 2 {
		return -1, fmt.Errorf("scene: rigid bodies must have at least 2 particles, got %d", len(vertices))
	}

	offset := len(*b.Particles)
	bodyIdx := len(*b.Bodies)
	bd := body.New()

	for i, v := range vertices {
		if v.IMass == 0 {
			return -1, fmt.Errorf("scene: rigid body vertex %d has infinite mass", i)
		}
		p := particle.New(v.Pos, v.IMass, particle.SOLID)
		p.Body = bodyIdx
		p.SFriction = v.SFriction
		p.KFriction = v.KFriction

		idx := offset + i
		*b.Particles = append(*b.Particles, p)
		bd.Particles = append(bd.Particles, idx)
		bd.SDF[idx] = v.SDF
	}

	var totalMass float64
	for _, v := range vertices {
		totalMass += 1.0 / v.IMass
	}
	bd.IMass = 1.0 / totalMass

	bd.UpdateCOM(func(idx int) vector.Vector2D { return (*b.Particles)[idx].P }, func(idx int) float64 { return (*b.Particles)[idx].IMass })
	bd.ComputeRs(func(idx int) vector.Vector2D { return (*b.Particles)[idx].P })

	shapeIdx := len(b.Groups[constraint.Shape])
	bd.Shape = shapeIdx
	b.Groups[constraint.Shape] = append(b.Groups[constraint.Shape], constraint.NewShape(bodyIdx))

	*b.Bodies = append(*b.Bodies, bd)
	return bodyIdx, nil
}

// CreateFluid allocates FLUID-phase particles sharing one opaque group tag
// and attaches a TotalFluidConstraint to STANDARD. imass is shared by
// every particle in the cluster; it fails if imass is 0.
func (b *Builder) CreateFluid(positions []vector.Vector2D, imass, rho0 float64) error {
	return b.createDensityCluster(positions, imass, rho0, particle.FLUID, constraint.NewFluid)
}

// CreateGas is CreateFluid with phase=GAS and a GasConstraint instead of a
// TotalFluidConstraint; the simulation driver scales gravity by ALPHA for
// GAS-phase particles during force integration.
func (b *Builder) CreateGas(positions []vector.Vector2D, imass, rho0 float64) error {
	return b.createDensityCluster(positions, imass, rho0, particle.GAS, constraint.NewGas)
}

func (b *Builder) createDensityCluster(positions []vector.Vector2D, imass, rho0 float64, phase particle.Phase, newConstraint func(float64, []int) *constraint.Constraint) error {
	if imass == 0 {
		return fmt.Errorf("scene: %s cluster cannot have infinite-mass particles", phase)
	}

	// Fluids and gases don't need unique ids, only a value distinct enough
	// to tell clusters apart for rendering.
	tag := int(100 * b.Rng.Float64())

	offset := len(*b.Particles)
	indices := make([]int, len(positions))
	for i, pos := range positions {
		p := particle.New(pos, imass, phase)
		p.Body = tag
		*b.Particles = append(*b.Particles, p)
		indices[i] = offset + i
	}

	b.Groups[constraint.Standard] = append(b.Groups[constraint.Standard], newConstraint(rho0, indices))
	return nil
}

// distanceAtRest builds a DistanceConstraint(i, j, restLen) with restLen
// taken from the particles' current separation, matching the original's
// link-joint constructor (which derives the rest length from the particles
// it is given rather than taking one as an argument). A restLen of 0 would
// weld the two points together instead of holding them at their initial
// spacing.
func (b *Builder) distanceAtRest(i, j int) *constraint.Constraint {
	restLen := (*b.Particles)[i].P.Distance((*b.Particles)[j].P)
	return constraint.NewDistance(i, j, restLen)
}

// Build dispatches to the demo scene matching tag, populating b's owning
// slices and groups, and returns the domain and gravity that scene runs
// under.
func Build(b *Builder, tag Tag) (Result, error) {
	switch tag {
	case Friction:
		return buildFriction(b)
	case Granular:
		return buildGranular(b)
	case Stacks:
		return buildStacks(b)
	case Wall:
		return buildWall(b)
	case Pendulum:
		return buildPendulum(b)
	case Fluid:
		return buildFluid(b)
	case FluidSolid:
		return buildFluidSolid(b)
	case Gas:
		return buildGas(b)
	default:
		return Result{}, fmt.Errorf("scene: unknown tag %v", tag)
	}
}

func defaultGravity() vector.Vector2D {
	return vector.New(0, -9.8)
}
