package body

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haldenlabs/pbd2d/vector"
)

func TestNew(t *testing.T) {
	b := New()
	assert.Equal(t, -1, b.Shape)
	assert.NotNil(t, b.SDF)
	assert.NotNil(t, b.Rs)
}

func TestUpdateCOM(t *testing.T) {
	b := New()
	b.Particles = []int{0, 1}

	pos := map[int]vector.Vector2D{0: vector.New(0, 0), 1: vector.New(2, 0)}
	imass := map[int]float64{0: 1, 1: 1}

	b.UpdateCOM(func(i int) vector.Vector2D { return pos[i] }, func(i int) float64 { return imass[i] })
	assert.Equal(t, vector.New(1, 0), b.COM, "equal masses, midpoint COM")
}

func TestUpdateCOMSkipsImmovable(t *testing.T) {
	b := New()
	b.Particles = []int{0, 1}

	pos := map[int]vector.Vector2D{0: vector.New(0, 0), 1: vector.New(10, 0)}
	imass := map[int]float64{0: 0, 1: 1}

	b.UpdateCOM(func(i int) vector.Vector2D { return pos[i] }, func(i int) float64 { return imass[i] })
	assert.Equal(t, vector.New(10, 0), b.COM, "infinite-mass particles contribute no weight")
}

func TestUpdateCOMAllImmovable(t *testing.T) {
	b := New()
	b.Particles = []int{0}
	b.UpdateCOM(func(i int) vector.Vector2D { return vector.New(3, 4) }, func(i int) float64 { return 0 })
	assert.Equal(t, vector.Vector2D{}, b.COM, "no finite-mass particles leaves COM at origin")
}

func TestComputeRs(t *testing.T) {
	b := New()
	b.Particles = []int{0, 1}
	b.COM = vector.New(1, 0)

	pos := map[int]vector.Vector2D{0: vector.New(0, 0), 1: vector.New(2, 0)}
	b.ComputeRs(func(i int) vector.Vector2D { return pos[i] })

	assert.Equal(t, vector.New(-1, 0), b.Rs[0])
	assert.Equal(t, vector.New(1, 0), b.Rs[1])
}
