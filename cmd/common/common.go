package common

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ScottSallinen/cavity/utils"
)

func ExtractGraphName(graphFilename string) (graphName string) {
	gNameMainT := strings.Split(graphFilename, "/")
	gNameMain := gNameMainT[len(gNameMainT)-1]
	gNameMainTD := strings.Split(gNameMain, ".")
	if len(gNameMainTD) > 1 {
		return gNameMainTD[len(gNameMainTD)-2]
	} else {
		return gNameMainTD[0]
	}
}

// Default location for the group assignment of a graph.
func GroupsPath(graphFilename string) string {
	return filepath.Join("results", ExtractGraphName(graphFilename)+"-groups.txt")
}

// WriteGroups writes one "raw group" line per vertex, in internal id order, in the same format the labels loader reads.
func WriteGroups(path string, rawIds []uint32, groups []int) error {
	if len(rawIds) != len(groups) {
		return errors.Errorf("%d vertices but %d groups", len(rawIds), len(groups))
	}
	f, err := utils.CreateFile(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := range groups {
		if _, err := w.WriteString(utils.V(rawIds[i]) + " " + utils.V(groups[i]) + "\n"); err != nil {
			f.Close()
			return errors.Wrap(err, path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return errors.Wrap(f.Close(), path)
}

// GroupSizes counts the vertices in each of the q (1-based) groups.
func GroupSizes(q int, groups []int) []int {
	sizes := make([]int, q)
	for _, g := range groups {
		sizes[g-1]++
	}
	return sizes
}
