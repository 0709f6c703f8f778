package pbdgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldenlabs/pbd2d/vector"
)

func naivePairs(positions []vector.Vector2D, diam float64) map[[2]int]bool {
	out := make(map[[2]int]bool)
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if positions[i].Distance(positions[j]) < diam {
				out[[2]int{i, j}] = true
			}
		}
	}
	return out
}

func gridPairs(t *testing.T, positions []vector.Vector2D, diam float64) map[[2]int]bool {
	t.Helper()
	g := New(diam)
	for i, pos := range positions {
		g.Insert(i, pos)
	}

	out := make(map[[2]int]bool)
	for _, pair := range g.CandidatePairs() {
		i, j := pair[0], pair[1]
		if positions[i].Distance(positions[j]) < diam {
			out[[2]int{i, j}] = true
		}
	}
	return out
}

func TestCandidatePairsMatchesNaiveScan(t *testing.T) {
	diam := 1.0
	positions := []vector.Vector2D{
		{X: 0, Y: 0},
		{X: 0.5, Y: 0},   // overlaps 0
		{X: 5, Y: 5},     // isolated
		{X: 5.4, Y: 5.1}, // overlaps 2, straddles a cell boundary
		{X: -0.4, Y: 0.9},
	}

	want := naivePairs(positions, diam)
	got := gridPairs(t, positions, diam)

	assert.Equal(t, want, got, "grid candidate pairs, after the exact distance test, must equal the naive O(N^2) pair set")
	require.NotEmpty(t, want, "fixture should exercise at least one real overlap")
}

func TestCandidatePairsEmptyGrid(t *testing.T) {
	g := New(1.0)
	assert.Empty(t, g.CandidatePairs())
}

func TestCandidatePairsDeduplicatesAcrossCells(t *testing.T) {
	g := New(1.0)
	// Two particles in the same cell and one in a neighboring cell: the
	// same-cell pair and each cross-cell pair must appear exactly once.
	g.Insert(0, vector.New(0.1, 0.1))
	g.Insert(1, vector.New(0.2, 0.2))
	g.Insert(2, vector.New(1.05, 0.1))

	seen := make(map[[2]int]int)
	for _, pair := range g.CandidatePairs() {
		seen[pair]++
	}
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v returned more than once", pair)
	}
}

func TestCandidatePairsDeterministicAcrossCalls(t *testing.T) {
	g := New(1.0)
	positions := []vector.Vector2D{
		{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}, {X: 3, Y: 3}, {X: 1.5, Y: 1.5},
	}
	for i, pos := range positions {
		g.Insert(i, pos)
	}

	first := g.CandidatePairs()
	second := g.CandidatePairs()
	assert.Equal(t, first, second, "repeated calls over the same buckets must return pairs in the same order")
}

func TestClearResetsBuckets(t *testing.T) {
	g := New(1.0)
	g.Insert(0, vector.New(0, 0))
	g.Insert(1, vector.New(0.1, 0.1))
	require.NotEmpty(t, g.CandidatePairs())

	g.Clear()
	assert.Empty(t, g.CandidatePairs())
}
