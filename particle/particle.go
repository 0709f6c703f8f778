// Package particle defines the state carrier shared by every constraint and
// the simulation driver: position, predicted position, velocity, inverse
// mass, phase, owning body, friction, and sleep state.
package particle

import (
	"encoding/json"
	"math"

	"github.com/haldenlabs/pbd2d/vector"
)

// Phase tags the material a particle belongs to. GRANULAR is not a distinct
// phase value: granular piles are SOLID particles with nonzero friction
// coefficients.
type Phase int

const (
	SOLID Phase = iota
	FLUID
	GAS
)

func (p Phase) String() string {
	switch p {
	case SOLID:
		return "SOLID"
	case FLUID:
		return "FLUID"
	case GAS:
		return "GAS"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the phase as its name rather than its underlying int,
// for the benefit of the stream package's websocket consumers.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Particle is the per-particle state. The shared particle diameter
// (PARTICLE_DIAM) and its radius are not stored here: they come from the
// owning simulation's configuration through constraint.Context, not from
// package-level globals, so that multiple simulations with different scales
// can coexist.
type Particle struct {
	P  vector.Vector2D // current position
	Ep vector.Vector2D // predicted position
	V  vector.Vector2D // velocity

	IMass float64 // inverse mass; 0 means immovable
	SM    float64 // mass scale, recomputed each tick by ScaleMass

	Phase Phase
	Body  int // owning body id, -1 if none; >=0 opaque group tag for fluid/gas

	SFriction float64 // static friction coefficient
	KFriction float64 // kinetic friction coefficient

	Sleeping bool
}

// New constructs a particle at rest with the given inverse mass and phase.
func New(pos vector.Vector2D, imass float64, phase Phase) *Particle {
	return &Particle{
		P:     pos,
		Ep:    pos,
		IMass: imass,
		SM:    1,
		Phase: phase,
		Body:  -1,
	}
}

// Guess returns the predicted position p + dt*v, before constraint
// projection.
func (p *Particle) Guess(dt float64) vector.Vector2D {
	return p.P.Add(p.V.Scale(dt))
}

// massScaleFalloff controls how quickly a particle's contact mass scale
// decays with height above the floor of its local stack. Tuned against the
// rigid-square-drop and friction settling tests in sim_test.go.
const massScaleFalloff = 0.4

// ScaleMass recomputes SM, the per-particle mass-scale multiplier applied by
// contact and rigid-contact constraints to stabilize stacks. The policy used
// here is height-above-floor decay: particles resting lower in a pile (closer
// to the domain floor) keep a larger effective inverse-mass weight penalty
// (smaller SM), so they resist displacement more than particles stacked atop
// them. floorY is the y coordinate of the domain's lower boundary.
func (p *Particle) ScaleMass(floorY float64) {
	height := p.P.Y - floorY
	if height < 0 {
		height = 0
	}
	p.SM = math.Exp(-massScaleFalloff * height)
	if p.SM < 0.05 {
		p.SM = 0.05
	}
}

// ConfirmGuess copies Ep into P unless the particle is sleeping this tick.
// Sleep policy: if the predicted displacement for this tick is smaller than
// sleepEps, the particle's velocity is zeroed and its position left
// untouched; otherwise it wakes (Sleeping is cleared) and P <- Ep.
func (p *Particle) ConfirmGuess(sleepEps float64) {
	if p.IMass == 0 {
		p.V = vector.Vector2D{}
		return
	}
	if p.Ep.Distance(p.P) < sleepEps {
		p.Sleeping = true
		p.V = vector.Vector2D{}
		return
	}
	p.Sleeping = false
	p.P = p.Ep
}
