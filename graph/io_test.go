package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEdgeList = `# a small test graph
10 20
20 30 1.5
30 10
30 40
40 30
10 10
99
`

func TestReadEdgeList(t *testing.T) {
	el, err := ReadEdgeList(strings.NewReader(testEdgeList))
	require.NoError(t, err)

	assert.Equal(t, []uint32{10, 20, 30, 40, 99}, el.RawIds)
	assert.Equal(t, uint32(2), el.VertexMap[30])
	assert.Equal(t, uint64(1), el.SelfLoops)
	assert.Equal(t, uint64(1), el.Duplicates)
	assert.Equal(t, uint64(8), el.Lines)

	require.NoError(t, el.Adj.Validate())
	assert.Equal(t, Adjacency{{1, 2}, {0, 2}, {0, 1, 3}, {2}, {}}, el.Adj)
}

func TestReadEdgeListErrors(t *testing.T) {
	for _, bad := range []string{"1 x\n", "1 2 3 4\n", "-1 2\n"} {
		_, err := ReadEdgeList(strings.NewReader(bad))
		assert.Error(t, err, bad)
	}
}

func TestLoadEdgeListAndLabels(t *testing.T) {
	dir := t.TempDir()
	gPath := filepath.Join(dir, "g.txt")
	lPath := filepath.Join(dir, "g.labels")
	require.NoError(t, os.WriteFile(gPath, []byte(testEdgeList), 0o644))
	require.NoError(t, os.WriteFile(lPath, []byte("10 1\n20 1\n30 2\n40 2\n# comment\n99 1\n12345 2\n"), 0o644))

	el, err := LoadEdgeList(gPath)
	require.NoError(t, err)
	labels, err := LoadLabels(lPath, el)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 1}, labels)

	_, err = LoadEdgeList(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestReadLabelsMissing(t *testing.T) {
	el, err := ReadEdgeList(strings.NewReader("1 2\n"))
	require.NoError(t, err)
	_, err = ReadLabels(strings.NewReader("1 1\n"), el)
	assert.Error(t, err)
	_, err = ReadLabels(strings.NewReader("1 0\n2 1\n"), el)
	assert.Error(t, err)
}

func TestGonumRoundTrip(t *testing.T) {
	adj := testAdjacency()
	back := FromGonum(ToGonum(adj), len(adj))
	assert.Equal(t, adj, back)
}

func TestComputeGraphStats(t *testing.T) {
	s := ComputeGraphStats(testAdjacency())
	assert.Equal(t, 5, s.Vertices)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, 1, s.Isolated)
	assert.Equal(t, 3, s.MaxDegree)
	assert.Equal(t, 2, s.Components)
	assert.InDelta(t, 1.6, s.AverageDegree, 1e-12)
}
