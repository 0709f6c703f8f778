package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArithmetic(t *testing.T) {
	a := New(1, 2)
	b := New(3, -1)

	assert.Equal(t, New(4, 1), a.Add(b), "add")
	assert.Equal(t, New(-2, 3), a.Sub(b), "sub")
	assert.Equal(t, New(2, 4), a.Scale(2), "scale")
	assert.Equal(t, 1.0, a.Dot(b), "dot")
	assert.Equal(t, -7.0, a.Cross(b), "cross")
}

func TestLength(t *testing.T) {
	v := New(3, 4)
	assert.Equal(t, 5.0, v.Length(), "length")
	assert.Equal(t, 25.0, v.LengthSquared(), "length squared")
}

func TestDistance(t *testing.T) {
	a := New(0, 0)
	b := New(3, 4)
	assert.Equal(t, 5.0, a.Distance(b), "distance")
	assert.Equal(t, 25.0, a.DistanceSquared(b), "distance squared")
}

func TestNormalize(t *testing.T) {
	v := New(3, 4)
	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-12, "unit length")
	assert.InDelta(t, 0.6, n.X, 1e-12, "x")
	assert.InDelta(t, 0.8, n.Y, 1e-12, "y")
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Vector2D{}, Vector2D{}.Normalize(), "zero vector normalizes to zero")
}

func TestNegAndPerp(t *testing.T) {
	v := New(1, 2)
	assert.Equal(t, New(-1, -2), v.Neg(), "neg")
	assert.Equal(t, New(-2, 1), v.Perp(), "perp rotates 90deg ccw")
}
