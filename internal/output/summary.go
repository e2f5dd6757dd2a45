package output

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-gff/internal/compare"
)

// SummaryWriter accumulates gene match and comparison counts for a run and
// prints them once at the end.
type SummaryWriter struct {
	refGenes       int
	matchedGenes   int
	belowThreshold int
	unmatchedPred  int
	comparedGenes  int
	classes        map[compare.Class]int
	exons          map[compare.Status]int
	refBP          int64
	predBP         int64
	matchedBP      int64
}

// NewSummaryWriter creates an empty summary.
func NewSummaryWriter() *SummaryWriter {
	return &SummaryWriter{
		classes: make(map[compare.Class]int),
		exons:   make(map[compare.Status]int),
	}
}

// AddMatches records the outcome of gene matching.
func (s *SummaryWriter) AddMatches(matches []compare.GeneMatch, unmatchedPredicted int) {
	for _, m := range matches {
		s.refGenes++
		switch {
		case m.Matched:
			s.matchedGenes++
		case m.Candidate != "":
			s.belowThreshold++
		}
	}
	s.unmatchedPred += unmatchedPredicted
}

// AddComparison records one detailed gene comparison.
func (s *SummaryWriter) AddComparison(gc *compare.GeneComparison) {
	s.comparedGenes++
	s.classes[gc.Metrics.Class]++
	s.exons[compare.StatusMatched] += gc.Metrics.Matched
	s.exons[compare.StatusPartial] += gc.Metrics.Partial
	s.exons[compare.StatusMissing] += gc.Metrics.Missing
	s.exons[compare.StatusExtra] += gc.Metrics.Extra
	s.refBP += gc.Metrics.TotalRefBP
	s.predBP += gc.Metrics.TotalPredBP
	s.matchedBP += gc.Metrics.MatchedBP
}

// Classes returns the per-class gene counts.
func (s *SummaryWriter) Classes() map[compare.Class]int {
	return s.classes
}

// ExonCounts returns the per-status exon counts.
func (s *SummaryWriter) ExonCounts() map[compare.Status]int {
	return s.exons
}

// OverlapRatio returns matched bases over the larger base total of all
// compared genes.
func (s *SummaryWriter) OverlapRatio() float64 {
	total := max(s.refBP, s.predBP)
	if total == 0 {
		return 0
	}
	return min(float64(s.matchedBP)/float64(total), 1)
}

// WriteSummary writes the accumulated counts to w.
func (s *SummaryWriter) WriteSummary(w io.Writer) {
	matchRate := float64(0)
	if s.refGenes > 0 {
		matchRate = float64(s.matchedGenes) / float64(s.refGenes) * 100
	}
	unmatched := s.refGenes - s.matchedGenes

	fmt.Fprintf(w, "\nGene Matching Summary:\n")
	fmt.Fprintf(w, "  Reference genes:     %d\n", s.refGenes)
	fmt.Fprintf(w, "  Matched:             %d (%.1f%%)\n", s.matchedGenes, matchRate)
	fmt.Fprintf(w, "  Unmatched:           %d (%d below threshold)\n", unmatched, s.belowThreshold)
	fmt.Fprintf(w, "  Unmatched predicted: %d\n", s.unmatchedPred)

	if s.comparedGenes == 0 {
		return
	}

	fmt.Fprintf(w, "\nComparison Summary (%d genes):\n", s.comparedGenes)
	for _, c := range []compare.Class{compare.ClassPerfect, compare.ClassReasonable, compare.ClassSignificant, compare.ClassNoData} {
		fmt.Fprintf(w, "    %-24s%d\n", c, s.classes[c])
	}

	fmt.Fprintf(w, "\n  Exons:\n")
	for _, st := range []compare.Status{compare.StatusMatched, compare.StatusPartial, compare.StatusMissing, compare.StatusExtra} {
		fmt.Fprintf(w, "    %-24s%d\n", st, s.exons[st])
	}

	fmt.Fprintf(w, "\n  Bases: ref %d, pred %d, matched %d (overlap %.1f%%)\n",
		s.refBP, s.predBP, s.matchedBP, s.OverlapRatio()*100)
}
