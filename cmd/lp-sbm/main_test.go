package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottSallinen/cavity/bp"
)

// Two 5-cliques joined by a single edge, raw ids starting at 1.
func writeTwoCliques(t *testing.T, dir string) (graphPath, labelsPath string) {
	var g, l strings.Builder
	for c := 0; c < 2; c++ {
		for i := 1; i <= 5; i++ {
			u := c*5 + i
			l.WriteString(strconv.Itoa(u) + " " + strconv.Itoa(c+1) + "\n")
			for j := i + 1; j <= 5; j++ {
				g.WriteString(strconv.Itoa(u) + " " + strconv.Itoa(c*5+j) + "\n")
			}
		}
	}
	g.WriteString("5 6\n")
	graphPath = filepath.Join(dir, "cliques.txt")
	labelsPath = filepath.Join(dir, "cliques.labels")
	require.NoError(t, os.WriteFile(graphPath, []byte(g.String()), 0o644))
	require.NoError(t, os.WriteFile(labelsPath, []byte(l.String()), 0o644))
	return graphPath, labelsPath
}

func TestRunTwoCliques(t *testing.T) {
	dir := t.TempDir()
	graphPath, labelsPath := writeTwoCliques(t, dir)

	opts := bp.CommandOptions{
		Restart:    bp.DefaultRestartOptions(),
		Groups:     2,
		GraphPath:  graphPath,
		LabelsPath: labelsPath,
		Output:     filepath.Join(dir, "out", "groups.txt"),
		Stats:      true,
	}
	opts.Restart.AffinityScale = 10

	sum, err := run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, sum.Scored)
	assert.Equal(t, []int{5, 5}, sum.Sizes)
	assert.InDelta(t, 1.0, sum.Overlap, 1e-12)

	written, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(written)), "\n")
	assert.Len(t, lines, 10)
}

func TestRunMissingGraph(t *testing.T) {
	opts := bp.CommandOptions{Restart: bp.DefaultRestartOptions(), Groups: 2, GraphPath: filepath.Join(t.TempDir(), "nope.txt")}
	_, err := run(context.Background(), opts)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	opts := bp.CommandOptions{GraphPath: "data/karate.txt"}
	assert.Equal(t, "", outputPath(opts))
	opts.WriteGroups = true
	assert.Equal(t, filepath.Join("results", "karate-groups.txt"), outputPath(opts))
	opts.Output = "mine.txt"
	assert.Equal(t, "mine.txt", outputPath(opts))
}
