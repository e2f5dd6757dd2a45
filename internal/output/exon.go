package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

// ExonWriter writes per-exon comparison rows in tab-delimited format.
type ExonWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewExonWriter creates a new per-exon writer.
func NewExonWriter(w io.Writer) *ExonWriter {
	return &ExonWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Ref_Gene",
			"Pred_Gene",
			"Ref_Transcript",
			"Pred_Transcript",
			"Type",
			"Status",
			"Ref_Start",
			"Ref_End",
			"Pred_Start",
			"Pred_End",
			"Overlap",
			"Overlap_Ratio",
		},
	}
}

// WriteHeader writes the header line.
func (ew *ExonWriter) WriteHeader() error {
	_, err := ew.w.WriteString(strings.Join(ew.columns, "\t") + "\n")
	return err
}

// WriteComparison writes every exon row of every transcript pair in gc.
func (ew *ExonWriter) WriteComparison(gc *compare.GeneComparison) error {
	refGene := geneID(gc.RefGene)
	predGene := geneID(gc.PredGene)

	for _, pair := range gc.Pairs {
		refTx := orDash(pair.Result.RefTranscriptID)
		predTx := orDash(pair.Result.PredTranscriptID)

		for _, row := range pair.Result.Rows() {
			refStart, refEnd := exonCoords(row.Ref)
			predStart, predEnd := exonCoords(row.Pred)

			seg := row.Pred
			if row.Ref != nil {
				seg = row.Ref
			}

			overlap, ratio := "-", "-"
			if row.Ref != nil && row.Pred != nil {
				overlap = strconv.FormatInt(row.Overlap, 10)
				ratio = formatRatio(row.Ratio)
			}

			values := []string{
				refGene,
				predGene,
				refTx,
				predTx,
				string(seg.Type),
				string(row.Status),
				refStart,
				refEnd,
				predStart,
				predEnd,
				overlap,
				ratio,
			}
			if _, err := ew.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (ew *ExonWriter) Flush() error {
	return ew.w.Flush()
}

func exonCoords(e *gff.Exon) (string, string) {
	if e == nil {
		return "-", "-"
	}
	return strconv.FormatInt(e.Start, 10), strconv.FormatInt(e.End, 10)
}

func geneID(g *gff.Gene) string {
	if g == nil {
		return "-"
	}
	return g.ID
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
