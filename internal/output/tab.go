// Package output provides report formatters for annotation comparisons.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

// MatchWriter writes gene matches in tab-delimited format.
type MatchWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewMatchWriter creates a new tab-delimited gene match writer.
func NewMatchWriter(w io.Writer) *MatchWriter {
	return &MatchWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Ref_Gene",
			"Pred_Gene",
			"SeqID",
			"Ref_Start",
			"Ref_End",
			"Pred_Start",
			"Pred_End",
			"Overlap",
			"Overlap_Ratio",
			"Status",
		},
	}
}

// WriteHeader writes the header line.
func (mw *MatchWriter) WriteHeader() error {
	_, err := mw.w.WriteString(strings.Join(mw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene match. Unmatched reference genes show the best
// rejected candidate in parentheses when there is one.
func (mw *MatchWriter) Write(m compare.GeneMatch) error {
	predGene := "-"
	predStart, predEnd := "-", "-"
	status := "matched"

	switch {
	case m.Matched:
		predGene = m.PredGeneID
		if m.Pred != nil {
			predStart = strconv.FormatInt(m.Pred.Start, 10)
			predEnd = strconv.FormatInt(m.Pred.End, 10)
		}
	case m.Candidate != "":
		predGene = "(" + m.Candidate + ")"
		status = "below_threshold"
	default:
		status = "unmatched"
	}

	refStart, refEnd := "-", "-"
	if m.Ref != nil {
		refStart = strconv.FormatInt(m.Ref.Start, 10)
		refEnd = strconv.FormatInt(m.Ref.End, 10)
	}

	values := []string{
		m.RefGeneID,
		predGene,
		m.SeqID,
		refStart,
		refEnd,
		predStart,
		predEnd,
		strconv.FormatInt(m.Overlap, 10),
		formatRatio(m.Ratio),
		status,
	}

	_, err := mw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteUnmatchedPredicted writes rows for predicted genes that no reference
// gene was matched to.
func (mw *MatchWriter) WriteUnmatchedPredicted(genes []*gff.Gene) error {
	for _, g := range genes {
		values := []string{
			"-",
			g.ID,
			g.SeqID,
			"-",
			"-",
			strconv.FormatInt(g.Start, 10),
			strconv.FormatInt(g.End, 10),
			"0",
			formatRatio(0),
			"extra",
		}
		if _, err := mw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MatchWriter) Flush() error {
	return mw.w.Flush()
}

func formatRatio(r float64) string {
	return fmt.Sprintf("%.4f", r)
}
