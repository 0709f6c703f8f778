// Package vector provides the 2-vector arithmetic shared by every package in
// the simulation core.
package vector

import "math"

// Vector2D is a double-precision 2D vector, used for positions, velocities,
// and normals throughout the simulation.
type Vector2D struct {
	X, Y float64
}

func New(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the scalar (z-component) cross product of the two 2D vectors.
func (v Vector2D) Cross(o Vector2D) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2D) Distance(o Vector2D) float64 {
	return v.Sub(o).Length()
}

func (v Vector2D) DistanceSquared(o Vector2D) float64 {
	return v.Sub(o).LengthSquared()
}

// Normalize returns a unit vector, or the zero vector if v is zero-length.
func (v Vector2D) Normalize() Vector2D {
	l := v.Length()
	if l == 0 {
		return Vector2D{}
	}
	inv := 1.0 / l
	return Vector2D{X: v.X * inv, Y: v.Y * inv}
}

func (v Vector2D) Neg() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vector2D) Perp() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}
