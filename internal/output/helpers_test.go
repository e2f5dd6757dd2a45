package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

func loadFixtures(t *testing.T) (*gff.Hierarchy, *gff.Hierarchy) {
	t.Helper()
	ref, _, err := gff.NewLoader("../../testdata/ref.gff3").LoadHierarchy(gff.BuildOptions{})
	require.NoError(t, err)
	pred, _, err := gff.NewLoader("../../testdata/pred.gff3").LoadHierarchy(gff.BuildOptions{})
	require.NoError(t, err)
	return ref, pred
}

func fixtureMatches(t *testing.T) ([]compare.GeneMatch, *gff.Hierarchy, *gff.Hierarchy) {
	t.Helper()
	ref, pred := loadFixtures(t)
	return compare.FindGeneMatches(ref, pred, compare.DefaultMatchOptions()), ref, pred
}

// dataLines splits output into non-header lines.
func dataLines(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}
