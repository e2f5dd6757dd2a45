package compare

import (
	"fmt"
	"strings"
	"testing"

	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/stretchr/testify/require"
)

// tx builds a transcript on chr1 from (start, end) exon pairs.
func tx(id string, exons ...[2]int64) *gff.Transcript {
	t := &gff.Transcript{ID: id, SeqID: "chr1", Strand: gff.StrandForward}
	for _, e := range exons {
		t.Exons = append(t.Exons, gff.Exon{Type: gff.TypeExon, Start: e[0], End: e[1]})
	}
	if len(exons) > 0 {
		t.Start = exons[0][0]
		t.End = exons[len(exons)-1][1]
	}
	return t
}

func gene(id string, start, end int64, transcripts ...*gff.Transcript) *gff.Gene {
	g := &gff.Gene{ID: id, SeqID: "chr1", Start: start, End: end, Strand: gff.StrandForward, Transcripts: transcripts}
	for _, t := range transcripts {
		t.GeneID = id
	}
	return g
}

func buildHierarchy(t *testing.T, content string) *gff.Hierarchy {
	t.Helper()
	res, err := gff.Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Empty(t, res.Malformed)
	return gff.Build(res.Records, gff.BuildOptions{})
}

func loadHierarchy(t *testing.T, path string) *gff.Hierarchy {
	t.Helper()
	h, _, err := gff.NewLoader(path).LoadHierarchy(gff.BuildOptions{})
	require.NoError(t, err)
	return h
}

func spans(exons []gff.Exon) [][2]int64 {
	var out [][2]int64
	for _, e := range exons {
		out = append(out, [2]int64{e.Start, e.End})
	}
	return out
}

// row formats one GFF3 line.
func row(seq, typ string, start, end int64, strand, attrs string) string {
	return fmt.Sprintf("%s\ttest\t%s\t%d\t%d\t.\t%s\t.\t%s\n", seq, typ, start, end, strand, attrs)
}
