// Package constraint implements the constraint family: Distance, Boundary,
// Contact, RigidContact, TotalShape, TotalFluid, and Gas.
//
// The family is realized as a single tagged-variant struct with a Kind enum
// and a Project method dispatching by switch, rather than an interface
// hierarchy: the set of constraint kinds is closed, and the inner solver
// loop is hot enough that avoiding virtual calls is worth the loss of open
// extensibility.
package constraint

import (
	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

// Kind identifies which projection a Constraint runs.
type Kind int

const (
	KindDistance Kind = iota
	KindBoundary
	KindContact
	KindRigidContact
	KindShape
	KindFluid
	KindGas
)

// Group is the constraint group tag. CONTACT and STABILIZATION constraints
// are ephemeral, rebuilt by the simulation driver every tick; SHAPE and
// STANDARD constraints persist for the simulation's lifetime.
type Group int

const (
	Shape Group = iota
	Standard
	Contact
	Stabilization
)

// Context bundles the owning simulation's particle and body slices plus the
// scale constants every projection needs. Constraints hold indices into
// Particles/Bodies, never pointers, so the simulation can grow its slices
// without invalidating constraints.
type Context struct {
	Particles []*particle.Particle
	Bodies    []*body.Body

	Diameter float64
	Radius   float64
	Epsilon  float64
}

// Constraint is one instance of the tagged variant. Only the fields relevant
// to Kind are populated by the constructors below.
type Constraint struct {
	Kind  Kind
	Group Group

	// Distance, Contact, RigidContact, Boundary (I only)
	I, J int

	// Distance
	RestLen float64

	// Boundary
	Axis        int // 0 = x, 1 = y
	IsMin       bool
	Plane       float64
	Stabilizing bool

	// Shape
	BodyIndex int

	// Fluid, Gas
	Density float64
	Members []int
}

// Project mutates the predicted positions (and, for stabilizing boundary and
// rigid-contact constraints run during the stabilization pass, the current
// positions) of the particles this constraint references, moving the system
// toward satisfying it.
func (c *Constraint) Project(ctx *Context) {
	switch c.Kind {
	case KindDistance:
		projectDistance(ctx, c)
	case KindBoundary:
		projectBoundary(ctx, c)
	case KindContact:
		projectContact(ctx, c)
	case KindRigidContact:
		projectRigidContact(ctx, c)
	case KindShape:
		projectShape(ctx, c)
	case KindFluid, KindGas:
		projectDensity(ctx, c)
	}
}

// Term is one nonzero entry of a constraint's Jacobian row: the gradient of
// the constraint value with respect to one particle's predicted position.
type Term struct {
	Index int
	Grad  vector.Vector2D
}

// Row is one constraint's contribution to the batched solver's Jacobian:
// its current value C and the gradient terms needed to assemble
// J M⁻¹ Jᵀ λ = −C.
type Row struct {
	Terms []Term
	C     float64
}

// Rows returns this constraint's Jacobian row for the batched matrix
// solver, and false if the constraint kind is not assembled into the
// matrix (SHAPE is always iterated directly; TotalFluid and Gas solve
// their own block-diagonal SPH system in projectDensity, which already
// performs the batched per-particle lambda solve the matrix path would
// otherwise reconstruct).
func (c *Constraint) Rows(ctx *Context) (Row, bool) {
	switch c.Kind {
	case KindDistance:
		return rowDistance(ctx, c)
	case KindBoundary:
		return rowBoundary(ctx, c)
	case KindContact:
		return rowContact(ctx, c)
	case KindRigidContact:
		return rowRigidContact(ctx, c)
	default:
		return Row{}, false
	}
}
