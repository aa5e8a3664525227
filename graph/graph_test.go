package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 0-1, 0-2, 1-2, 2-3, plus isolated 4.
func testAdjacency() Adjacency {
	return Adjacency{
		{1, 2},
		{0, 2},
		{0, 1, 3},
		{2},
		{},
	}
}

func TestEdgeIndexBijection(t *testing.T) {
	adj := testAdjacency()
	idx, err := NewEdgeIndex(adj)
	require.NoError(t, err)

	require.Equal(t, 5, idx.NumNodes())
	require.Equal(t, 8, idx.NumEdges())

	// Codes follow node order then neighbour order.
	expect := []Edge{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}, {2, 3}, {3, 2}}
	for code := range expect {
		e := idx.Edge(uint32(code))
		assert.Equal(t, expect[code], e)
		back, ok := idx.Code(e.Src, e.Dst)
		require.True(t, ok)
		assert.Equal(t, uint32(code), back)

		rev := idx.Edge(idx.Reverse(uint32(code)))
		assert.Equal(t, Edge{e.Dst, e.Src}, rev)
	}

	_, ok := idx.Code(0, 3)
	assert.False(t, ok)
}

func TestEdgeIndexOut(t *testing.T) {
	idx, err := NewEdgeIndex(testAdjacency())
	require.NoError(t, err)

	for u := uint32(0); u < 5; u++ {
		start, end := idx.Out(u)
		assert.Equal(t, idx.Degree(u), int(end-start))
		for code := start; code < end; code++ {
			assert.Equal(t, u, idx.Edge(code).Src)
		}
	}
	start, end := idx.Out(4)
	assert.Equal(t, start, end)
}

func TestEdgeIndexDeterministic(t *testing.T) {
	a, err := NewEdgeIndex(testAdjacency())
	require.NoError(t, err)
	b, err := NewEdgeIndex(testAdjacency())
	require.NoError(t, err)
	for code := 0; code < a.NumEdges(); code++ {
		assert.Equal(t, a.Edge(uint32(code)), b.Edge(uint32(code)))
	}
}

func TestInvalidGraphs(t *testing.T) {
	cases := map[string]Adjacency{
		"out of range": {{1}, {0, 5}},
		"self loop":    {{0}},
		"duplicate":    {{1, 1}, {0, 0}},
		"asymmetric":   {{1}, {}},
	}
	for name, adj := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewEdgeIndex(adj)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGraph), err.Error())
			assert.ErrorIs(t, adj.Validate(), ErrInvalidGraph)
		})
	}
}

func TestEmptyAndEdgeless(t *testing.T) {
	idx, err := NewEdgeIndex(Adjacency{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.NumNodes())
	assert.Equal(t, 0, idx.NumEdges())

	idx, err = NewEdgeIndex(make(Adjacency, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.NumNodes())
	assert.Equal(t, 0, idx.NumEdges())
	assert.Equal(t, 0.0, make(Adjacency, 3).AverageDegree())
}

func TestFromEdges(t *testing.T) {
	adj := FromEdges(4, [][2]uint32{{0, 1}, {1, 2}, {3, 0}})
	require.NoError(t, adj.Validate())
	assert.Equal(t, Adjacency{{1, 3}, {0, 2}, {1}, {0}}, adj)
	assert.Equal(t, 6, adj.NumDirected())
	assert.Equal(t, 1.5, adj.AverageDegree())
}
