package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

func TestMatchWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewMatchWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	assert.True(t, strings.HasPrefix(header, "#Ref_Gene\t"))
	for _, col := range []string{"Pred_Gene", "SeqID", "Overlap_Ratio", "Status"} {
		assert.Contains(t, header, col)
	}
}

func TestMatchWriter_Fixtures(t *testing.T) {
	matches, _, pred := fixtureMatches(t)

	var buf bytes.Buffer
	w := NewMatchWriter(&buf)
	require.NoError(t, w.WriteHeader())
	for _, m := range matches {
		require.NoError(t, w.Write(m))
	}
	var extra []*gff.Gene
	for _, id := range compare.UnmatchedPredicted(pred, matches) {
		extra = append(extra, pred.Gene(id))
	}
	require.NoError(t, w.WriteUnmatchedPredicted(extra))
	require.NoError(t, w.Flush())

	rows := dataLines(buf.String())
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"geneA", "p1", "chr1", "100", "900", "100", "800", "701", "0.8752", "matched"}, rows[0])
	assert.Equal(t, []string{"geneB", "p2", "chr1", "5000", "6000", "5000", "6000", "1001", "1.0000", "matched"}, rows[1])
	assert.Equal(t, []string{"geneC", "-", "chr2", "1000", "2000", "-", "-", "0", "0.0000", "unmatched"}, rows[2])
	assert.Equal(t, []string{"-", "p3", "chr1", "-", "-", "20000", "21000", "0", "0.0000", "extra"}, rows[3])
}

func TestMatchWriter_BelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	w := NewMatchWriter(&buf)
	require.NoError(t, w.Write(compare.GeneMatch{
		RefGeneID: "r",
		Candidate: "p",
		SeqID:     "chr1",
		Overlap:   20,
		Ratio:     0.2,
		Ref:       &gff.Gene{ID: "r", SeqID: "chr1", Start: 1, End: 100},
	}))
	require.NoError(t, w.Flush())

	rows := dataLines(buf.String())
	require.Len(t, rows, 1)
	assert.Equal(t, "(p)", rows[0][1])
	assert.Equal(t, "0.2000", rows[0][8])
	assert.Equal(t, "below_threshold", rows[0][9])
}
