package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGeneMatches_Fixtures(t *testing.T) {
	ref := loadHierarchy(t, "../../testdata/ref.gff3")
	pred := loadHierarchy(t, "../../testdata/pred.gff3")

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	require.Len(t, matches, 3)

	byRef := make(map[string]GeneMatch)
	for _, m := range matches {
		byRef[m.RefGeneID] = m
	}

	a := byRef["geneA"]
	assert.True(t, a.Matched)
	assert.Equal(t, "p1", a.PredGeneID)
	assert.Equal(t, int64(701), a.Overlap)
	assert.InDelta(t, 701.0/801.0, a.Ratio, 1e-12)
	assert.Same(t, ref.Gene("geneA"), a.Ref)
	assert.Same(t, pred.Gene("p1"), a.Pred)

	b := byRef["geneB"]
	assert.True(t, b.Matched)
	assert.Equal(t, "p2", b.PredGeneID)
	assert.Equal(t, 1.0, b.Ratio)

	c := byRef["geneC"]
	assert.False(t, c.Matched)
	assert.Empty(t, c.PredGeneID)
	assert.Empty(t, c.Candidate)
	assert.Nil(t, c.Pred)

	assert.Equal(t, []string{"p3"}, UnmatchedPredicted(pred, matches))
}

func TestFindGeneMatches_OrderFollowsReference(t *testing.T) {
	ref := loadHierarchy(t, "../../testdata/ref.gff3")
	pred := loadHierarchy(t, "../../testdata/pred.gff3")

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	var ids []string
	for _, m := range matches {
		ids = append(ids, m.RefGeneID)
	}
	assert.Equal(t, []string{"geneA", "geneB", "geneC"}, ids)
}

func TestFindGeneMatches_ThresholdInclusive(t *testing.T) {
	// Reference 1-100, prediction 51-150: 50 shared bases of 100.
	ref := buildHierarchy(t, row("chr1", "gene", 1, 100, "+", "ID=r"))
	pred := buildHierarchy(t, row("chr1", "gene", 51, 150, "+", "ID=p"))

	matches := FindGeneMatches(ref, pred, MatchOptions{OverlapThreshold: 0.5})
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Matched)
	assert.Equal(t, 0.5, matches[0].Ratio)

	matches = FindGeneMatches(ref, pred, MatchOptions{OverlapThreshold: 0.51})
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Matched)
	assert.Equal(t, "p", matches[0].Candidate)
	assert.Empty(t, matches[0].PredGeneID)
	assert.Equal(t, 0.5, matches[0].Ratio)
}

func TestFindGeneMatches_BestRatioWins(t *testing.T) {
	ref := buildHierarchy(t, row("chr1", "gene", 1000, 2000, "+", "ID=r"))
	pred := buildHierarchy(t,
		row("chr1", "gene", 900, 1600, "+", "ID=small")+
			row("chr1", "gene", 1000, 1990, "+", "ID=big"))

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	require.Len(t, matches, 1)
	assert.Equal(t, "big", matches[0].PredGeneID)
}

func TestFindGeneMatches_TieGoesToSmallestID(t *testing.T) {
	ref := buildHierarchy(t, row("chr1", "gene", 100, 199, "+", "ID=r"))
	pred := buildHierarchy(t,
		row("chr1", "gene", 150, 249, "+", "ID=zeta")+
			row("chr1", "gene", 50, 149, "+", "ID=alpha"))

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	require.Len(t, matches, 1)
	assert.Equal(t, "alpha", matches[0].PredGeneID)
}

func TestFindGeneMatches_SameStrand(t *testing.T) {
	ref := buildHierarchy(t, row("chr1", "gene", 1, 100, "+", "ID=r"))
	pred := buildHierarchy(t,
		row("chr1", "gene", 1, 100, "-", "ID=minus")+
			row("chr1", "gene", 1, 80, ".", "ID=unknown"))

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	assert.Equal(t, "minus", matches[0].PredGeneID)

	matches = FindGeneMatches(ref, pred, MatchOptions{OverlapThreshold: 0.5, SameStrand: true})
	assert.Equal(t, "unknown", matches[0].PredGeneID)
}

func TestFindGeneMatches_DifferentSequence(t *testing.T) {
	ref := buildHierarchy(t, row("chr1", "gene", 1, 100, "+", "ID=r"))
	pred := buildHierarchy(t, row("chr2", "gene", 1, 100, "+", "ID=p"))

	matches := FindGeneMatches(ref, pred, DefaultMatchOptions())
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Matched)
	assert.Equal(t, []string{"p"}, UnmatchedPredicted(pred, matches))
}

func TestFindGeneMatches_EmptyHierarchies(t *testing.T) {
	empty := buildHierarchy(t, "")
	ref := buildHierarchy(t, row("chr1", "gene", 1, 100, "+", "ID=r"))

	assert.Empty(t, FindGeneMatches(empty, ref, DefaultMatchOptions()))
	matches := FindGeneMatches(ref, empty, DefaultMatchOptions())
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Matched)
	assert.Empty(t, UnmatchedPredicted(empty, matches))
}

func TestPairGenes(t *testing.T) {
	ref := gene("r", 1, 100)
	pred := gene("p", 81, 300)

	m := PairGenes(ref, pred)
	assert.True(t, m.Matched)
	assert.Equal(t, "p", m.PredGeneID)
	assert.Equal(t, int64(20), m.Overlap)
	assert.InDelta(t, 20.0/220.0, m.Ratio, 1e-12)

	pred.SeqID = "chr9"
	m = PairGenes(ref, pred)
	assert.True(t, m.Matched)
	assert.Zero(t, m.Ratio)
}
