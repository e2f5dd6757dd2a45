// Package compare aligns predicted gene models against reference models:
// gene matching by locus overlap, greedy exon classification within
// transcript pairs, and the overlap metrics derived from it.
package compare

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/inodb/vibe-gff/internal/interval"
)

// SegmentMode selects which transcript segments take part in alignment.
type SegmentMode string

const (
	// SegmentsExon aligns exon rows, falling back to CDS rows for
	// transcripts that carry no exon rows (CDS-only predictions).
	SegmentsExon SegmentMode = "exon"
	// SegmentsCDS aligns CDS rows only.
	SegmentsCDS SegmentMode = "CDS"
	// SegmentsAll aligns every exon and CDS row together.
	SegmentsAll SegmentMode = "all"
)

// ParseSegmentMode converts a config value into a SegmentMode.
func ParseSegmentMode(s string) (SegmentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exon":
		return SegmentsExon, nil
	case "cds":
		return SegmentsCDS, nil
	case "all":
		return SegmentsAll, nil
	}
	return "", fmt.Errorf("unknown segment mode %q (want exon, CDS or all)", s)
}

// AlignOptions configures exon classification.
type AlignOptions struct {
	// FullMatchThreshold is the minimum overlap ratio (inclusive) for a pair
	// to count as matched rather than partial.
	FullMatchThreshold float64
	// ExactBoundaries requires identical coordinates for a match instead of
	// FullMatchThreshold.
	ExactBoundaries bool
	Segments        SegmentMode
}

// DefaultAlignOptions returns the calibrated defaults.
func DefaultAlignOptions() AlignOptions {
	return AlignOptions{
		FullMatchThreshold: 0.95,
		Segments:           SegmentsExon,
	}
}

// Status is the classification of one exon.
type Status string

const (
	StatusMatched Status = "matched"
	StatusPartial Status = "partial"
	StatusMissing Status = "missing"
	StatusExtra   Status = "extra"
)

// ExonPair is a reference exon and the predicted exon chosen for it.
type ExonPair struct {
	Ref     gff.Exon
	Pred    gff.Exon
	Overlap int64   // Shared bases
	Ratio   float64 // Overlap / longer exon length
}

// Result holds the four-way classification for one transcript pair. Each
// reference exon lands in exactly one of Matched, Partial or Missing.
type Result struct {
	RefTranscriptID  string
	PredTranscriptID string
	Matched          []ExonPair
	Partial          []ExonPair
	Missing          []gff.Exon // Reference exons without a predicted counterpart
	Extra            []gff.Exon // Predicted exons never chosen by a reference exon
	RefBP            int64      // Total length of aligned reference segments
	PredBP           int64      // Total length of aligned predicted segments
}

// IsEmpty returns true if neither transcript contributed any segment.
func (r *Result) IsEmpty() bool {
	return len(r.Matched)+len(r.Partial)+len(r.Missing)+len(r.Extra) == 0
}

// AlignTranscripts classifies every segment of ref against pred. Either
// transcript may be nil, in which case the other side is entirely missing
// or extra.
//
// For each reference exon the overlapping predicted exon with the highest
// overlap ratio is chosen (earliest wins ties). This is a greedy, local
// choice: a predicted exon may serve several reference exons, and no global
// assignment is attempted.
func AlignTranscripts(ref, pred *gff.Transcript, opts AlignOptions) *Result {
	res := &Result{}
	refSegs := segments(ref, opts.Segments)
	predSegs := segments(pred, opts.Segments)
	if ref != nil {
		res.RefTranscriptID = ref.ID
	}
	if pred != nil {
		res.PredTranscriptID = pred.ID
	}
	for _, e := range refSegs {
		res.RefBP += e.Length()
	}
	for _, e := range predSegs {
		res.PredBP += e.Length()
	}

	// Different sequences can never overlap.
	if ref != nil && pred != nil && ref.SeqID != pred.SeqID {
		res.Missing = append(res.Missing, refSegs...)
		res.Extra = append(res.Extra, predSegs...)
		return res
	}

	used := make([]bool, len(predSegs))
	for _, r := range refSegs {
		best := -1
		var bestRatio float64
		var bestOverlap int64
		for j, p := range predSegs {
			// Segments are sorted by start.
			if p.Start > r.End {
				break
			}
			ov := interval.OverlapLength(r.Span(), p.Span())
			if ov == 0 {
				continue
			}
			ratio := interval.OverlapRatio(r.Span(), p.Span())
			if ratio > bestRatio {
				best, bestRatio, bestOverlap = j, ratio, ov
			}
		}

		if best < 0 {
			res.Missing = append(res.Missing, r)
			continue
		}

		used[best] = true
		pair := ExonPair{Ref: r, Pred: predSegs[best], Overlap: bestOverlap, Ratio: bestRatio}
		if isFullMatch(pair, opts) {
			res.Matched = append(res.Matched, pair)
		} else {
			res.Partial = append(res.Partial, pair)
		}
	}

	for j, p := range predSegs {
		if !used[j] {
			res.Extra = append(res.Extra, p)
		}
	}

	return res
}

func isFullMatch(p ExonPair, opts AlignOptions) bool {
	if opts.ExactBoundaries {
		return p.Ref.Start == p.Pred.Start && p.Ref.End == p.Pred.End
	}
	return p.Ratio >= opts.FullMatchThreshold
}

// segments returns the transcript's segments for mode, in start order.
func segments(t *gff.Transcript, mode SegmentMode) []gff.Exon {
	if t == nil {
		return nil
	}
	switch mode {
	case SegmentsAll:
		return t.Exons
	case SegmentsCDS:
		return t.Segments(gff.TypeCDS)
	}
	if exons := t.Segments(gff.TypeExon); len(exons) > 0 {
		return exons
	}
	return t.Segments(gff.TypeCDS)
}
