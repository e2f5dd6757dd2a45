package duckdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fixture struct {
	ref, pred   FileFingerprint
	matches     []compare.GeneMatch
	comparisons []*compare.GeneComparison
}

func loadFixture(t *testing.T) fixture {
	t.Helper()
	refPath := "../../testdata/ref.gff3"
	predPath := "../../testdata/pred.gff3"

	ref, _, err := gff.NewLoader(refPath).LoadHierarchy(gff.BuildOptions{})
	require.NoError(t, err)
	pred, _, err := gff.NewLoader(predPath).LoadHierarchy(gff.BuildOptions{})
	require.NoError(t, err)

	var f fixture
	f.ref, err = StatFile(refPath)
	require.NoError(t, err)
	f.pred, err = StatFile(predPath)
	require.NoError(t, err)

	f.matches = compare.FindGeneMatches(ref, pred, compare.DefaultMatchOptions())
	c := compare.NewComparer(compare.DefaultOptions())
	require.NoError(t, c.CompareAll(f.matches, 2, func(gc *compare.GeneComparison) error {
		f.comparisons = append(f.comparisons, gc)
		return nil
	}))
	return f
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestStatFile(t *testing.T) {
	fp, err := StatFile("../../testdata/ref.gff3")
	require.NoError(t, err)
	assert.Positive(t, fp.Size)
	assert.False(t, fp.ModTime.IsZero())

	_, err = StatFile("../../testdata/missing.gff3")
	assert.Error(t, err)
}

func TestWriteRun(t *testing.T) {
	s := openInMemory(t)
	f := loadFixture(t)
	opts := compare.DefaultOptions()
	opts.Align.ExactBoundaries = true
	opts.Match.SameStrand = true
	opts.Thresholds.Reasonable = 0.2

	id1, err := s.WriteRun(f.ref, f.pred, gff.BuildOptions{MultiParent: gff.AllParents}, opts)
	require.NoError(t, err)
	id2, err := s.WriteRun(f.ref, f.pred, gff.BuildOptions{}, compare.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	r := runs[0]
	assert.Equal(t, id1, r.ID)
	assert.Equal(t, f.ref.Path, r.Ref.Path)
	assert.Equal(t, f.ref.Size, r.Ref.Size)
	assert.WithinDuration(t, f.ref.ModTime, r.Ref.ModTime, time.Millisecond)
	assert.Equal(t, f.pred.Path, r.Pred.Path)
	assert.Equal(t, 0.5, r.Options.Match.OverlapThreshold)
	assert.Equal(t, 0.95, r.Options.Align.FullMatchThreshold)
	assert.True(t, r.Options.Align.ExactBoundaries)
	assert.Equal(t, compare.SegmentsExon, r.Options.Align.Segments)
	assert.True(t, r.Options.Match.SameStrand)
	assert.Equal(t, 0.2, r.Options.Thresholds.Reasonable)
	assert.Equal(t, gff.AllParents, r.Build.MultiParent)
	assert.Equal(t, opts, r.Options)

	assert.False(t, runs[1].Options.Align.ExactBoundaries)
	assert.False(t, runs[1].Options.Match.SameStrand)
	assert.Equal(t, 0.30, runs[1].Options.Thresholds.Reasonable)
	assert.Equal(t, gff.FirstParent, runs[1].Build.MultiParent)
}

func TestWriteAndReadGeneMatches(t *testing.T) {
	s := openInMemory(t)
	f := loadFixture(t)

	id, err := s.WriteRun(f.ref, f.pred, gff.BuildOptions{}, compare.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s.WriteGeneMatches(id, f.matches))

	got, err := s.GeneMatches(id)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "geneA", got[0].RefGeneID)
	assert.Equal(t, "p1", got[0].PredGeneID)
	assert.Equal(t, int64(701), got[0].Overlap)
	assert.InDelta(t, 701.0/801.0, got[0].Ratio, 1e-12)
	assert.True(t, got[0].Matched)

	assert.Equal(t, "geneC", got[2].RefGeneID)
	assert.Empty(t, got[2].PredGeneID)
	assert.Equal(t, "chr2", got[2].SeqID)
	assert.False(t, got[2].Matched)

	other, err := s.GeneMatches(id + 1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestWriteComparisons(t *testing.T) {
	s := openInMemory(t)
	f := loadFixture(t)
	require.Len(t, f.comparisons, 2)

	id, err := s.WriteRun(f.ref, f.pred, gff.BuildOptions{}, compare.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s.WriteComparisons(id, f.comparisons))

	counts, err := s.ExonStatusCounts(id)
	require.NoError(t, err)
	assert.Equal(t, map[compare.Status]int{
		compare.StatusMatched: 3,
		compare.StatusPartial: 1,
		compare.StatusMissing: 1,
		compare.StatusExtra:   1,
	}, counts)

	// Missing exons have no predicted coordinates.
	var nulls int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM exon_results
		WHERE run_id=? AND pred_start IS NULL`, id).Scan(&nulls))
	assert.Equal(t, 1, nulls)

	var predStart, predEnd int64
	var ratio float64
	require.NoError(t, s.DB().QueryRow(`SELECT pred_start, pred_end, ratio FROM exon_results
		WHERE run_id=? AND status='partial'`, id).Scan(&predStart, &predEnd, &ratio))
	assert.Equal(t, int64(305), predStart)
	assert.Equal(t, int64(395), predEnd)
	assert.InDelta(t, 91.0/101.0, ratio, 1e-12)
}

func TestWriteEmpty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteGeneMatches(1, nil))
	require.NoError(t, s.WriteComparisons(1, nil))

	counts, err := s.ExonStatusCounts(1)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
