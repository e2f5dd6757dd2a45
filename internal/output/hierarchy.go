package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-gff/internal/gff"
)

// GeneWriter writes one tab-delimited row per transcript of a hierarchy.
type GeneWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewGeneWriter creates a new hierarchy listing writer.
func NewGeneWriter(w io.Writer) *GeneWriter {
	return &GeneWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"SeqID",
			"Gene_Start",
			"Gene_End",
			"Strand",
			"Transcript",
			"Transcript_Start",
			"Transcript_End",
			"Exons",
			"CDS",
		},
	}
}

// WriteHeader writes the header line.
func (gw *GeneWriter) WriteHeader() error {
	_, err := gw.w.WriteString(strings.Join(gw.columns, "\t") + "\n")
	return err
}

// Write writes the rows for g. A gene without transcripts gets a single row
// with empty transcript columns.
func (gw *GeneWriter) Write(g *gff.Gene) error {
	prefix := []string{
		g.ID,
		g.SeqID,
		strconv.FormatInt(g.Start, 10),
		strconv.FormatInt(g.End, 10),
		g.Strand.String(),
	}

	if len(g.Transcripts) == 0 {
		_, err := gw.w.WriteString(strings.Join(append(prefix, "-", "-", "-", "0", "0"), "\t") + "\n")
		return err
	}

	for _, t := range g.Transcripts {
		values := append(prefix[:len(prefix):len(prefix)],
			t.ID,
			strconv.FormatInt(t.Start, 10),
			strconv.FormatInt(t.End, 10),
			strconv.Itoa(len(t.Segments(gff.TypeExon))),
			strconv.Itoa(len(t.Segments(gff.TypeCDS))),
		)
		if _, err := gw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GeneWriter) Flush() error {
	return gw.w.Flush()
}

// WriteHierarchySummary writes counts for one loaded annotation file.
func WriteHierarchySummary(w io.Writer, name string, h *gff.Hierarchy, res *gff.ParseResult) {
	fmt.Fprintf(w, "\n%s:\n", name)
	fmt.Fprintf(w, "  Records:      %d\n", len(res.Records))
	fmt.Fprintf(w, "  Malformed:    %d\n", len(res.Malformed))
	fmt.Fprintf(w, "  Skipped:      %d\n", res.SkippedCount())
	fmt.Fprintf(w, "  Sequences:    %d\n", len(h.SeqIDs()))
	fmt.Fprintf(w, "  Genes:        %d\n", h.GeneCount())
	fmt.Fprintf(w, "  Transcripts:  %d\n", h.TranscriptCount())
	fmt.Fprintf(w, "  Exons/CDS:    %d\n", h.ExonCount())
	fmt.Fprintf(w, "  Orphans:      %d\n", len(h.Orphans()))
	fmt.Fprintf(w, "  Warnings:     %d\n", len(h.Warnings()))
}
