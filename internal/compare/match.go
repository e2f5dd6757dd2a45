package compare

import (
	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/inodb/vibe-gff/internal/interval"
)

// MatchOptions configures gene-level matching.
type MatchOptions struct {
	// OverlapThreshold is the minimum span overlap ratio (inclusive) for a
	// predicted gene to be accepted.
	OverlapThreshold float64
	// SameStrand rejects candidates whose known strand differs from the
	// reference gene's. Genes with unknown strand are never rejected.
	SameStrand bool
}

// DefaultMatchOptions returns the default gene matching policy.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{OverlapThreshold: 0.5}
}

// GeneMatch pairs a reference gene with its best predicted gene. When no
// candidate reaches the threshold Matched is false, PredGeneID is empty and
// Candidate/Ratio describe the best rejected candidate, if any.
type GeneMatch struct {
	RefGeneID  string
	PredGeneID string
	Candidate  string
	SeqID      string
	Overlap    int64   // Shared bases between the two gene spans
	Ratio      float64 // Overlap / longer span
	Matched    bool
	Ref        *gff.Gene
	Pred       *gff.Gene
}

// FindGeneMatches returns one entry per reference gene, in ref.Genes()
// order. Candidates are predicted genes on the same sequence whose spans
// overlap; the highest overlap ratio wins and ties go to the smallest
// predicted ID. A reference gene is never forced into a pairing below the
// threshold.
func FindGeneMatches(ref, pred *gff.Hierarchy, opts MatchOptions) []GeneMatch {
	genes := ref.Genes()
	matches := make([]GeneMatch, 0, len(genes))

	for _, rg := range genes {
		m := GeneMatch{RefGeneID: rg.ID, SeqID: rg.SeqID, Ref: rg}

		var best *gff.Gene
		for _, pg := range pred.FindGenes(rg.SeqID, rg.Start, rg.End) {
			if opts.SameStrand && strandConflict(rg.Strand, pg.Strand) {
				continue
			}
			ratio := interval.OverlapRatio(rg.Span(), pg.Span())
			if best == nil || ratio > m.Ratio || (ratio == m.Ratio && pg.ID < best.ID) {
				best = pg
				m.Ratio = ratio
				m.Overlap = interval.OverlapLength(rg.Span(), pg.Span())
			}
		}

		if best != nil {
			if m.Ratio >= opts.OverlapThreshold {
				m.Matched = true
				m.PredGeneID = best.ID
				m.Pred = best
			} else {
				m.Candidate = best.ID
			}
		}
		matches = append(matches, m)
	}

	return matches
}

// PairGenes returns an accepted match between two explicitly chosen genes,
// bypassing candidate search and the overlap threshold.
func PairGenes(ref, pred *gff.Gene) GeneMatch {
	m := GeneMatch{
		RefGeneID:  ref.ID,
		PredGeneID: pred.ID,
		SeqID:      ref.SeqID,
		Matched:    true,
		Ref:        ref,
		Pred:       pred,
	}
	if ref.SeqID == pred.SeqID {
		m.Overlap = interval.OverlapLength(ref.Span(), pred.Span())
		m.Ratio = interval.OverlapRatio(ref.Span(), pred.Span())
	}
	return m
}

// UnmatchedPredicted returns the IDs of predicted genes that no reference
// gene was matched to, in pred.Genes() order.
func UnmatchedPredicted(pred *gff.Hierarchy, matches []GeneMatch) []string {
	chosen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.Matched {
			chosen[m.PredGeneID] = true
		}
	}

	var ids []string
	for _, g := range pred.Genes() {
		if !chosen[g.ID] {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func strandConflict(a, b gff.Strand) bool {
	return a != gff.StrandUnknown && b != gff.StrandUnknown && a != b
}
