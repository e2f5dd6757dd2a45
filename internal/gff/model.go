package gff

import "github.com/inodb/vibe-gff/internal/interval"

// Gene is the root of one locus in a Hierarchy.
type Gene struct {
	ID          string        // Gene identifier
	SeqID       string        // Sequence name
	Start       int64         // Gene start position (1-based)
	End         int64         // Gene end position (1-based, inclusive)
	Strand      Strand        // +1, -1 or 0
	Line        int           // Source line of the gene record
	Transcripts []*Transcript // Sorted by start
}

// Transcript represents one isoform and its exon/CDS segments.
type Transcript struct {
	ID     string // Transcript ID
	GeneID string // Parent gene ID
	SeqID  string
	Start  int64 // Transcript start (1-based)
	End    int64 // Transcript end (1-based, inclusive)
	Strand Strand
	Line   int
	Exons  []Exon // Exon and CDS segments, sorted by start
}

// Exon is one exon or CDS segment owned by a transcript.
type Exon struct {
	ID    string      // ID attribute, often empty
	Type  FeatureType // TypeExon or TypeCDS
	Start int64       // Genomic start (1-based)
	End   int64       // Genomic end (1-based, inclusive)
	Phase string
	Line  int
}

// Span returns the gene's declared interval.
func (g *Gene) Span() interval.Interval {
	return interval.Interval{Start: g.Start, End: g.End}
}

// Length returns the gene span length in bases.
func (g *Gene) Length() int64 {
	return g.End - g.Start + 1
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == StrandForward
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == StrandReverse
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// Transcript returns the transcript with the given ID, or nil.
func (g *Gene) Transcript(id string) *Transcript {
	for _, t := range g.Transcripts {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Span returns the transcript's declared interval.
func (t *Transcript) Span() interval.Interval {
	return interval.Interval{Start: t.Start, End: t.End}
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// Segments returns the transcript's segments of the given type, preserving
// start order.
func (t *Transcript) Segments(ft FeatureType) []Exon {
	var out []Exon
	for _, e := range t.Exons {
		if e.Type == ft {
			out = append(out, e)
		}
	}
	return out
}

// HasType returns true if the transcript owns at least one segment of ft.
func (t *Transcript) HasType(ft FeatureType) bool {
	for _, e := range t.Exons {
		if e.Type == ft {
			return true
		}
	}
	return false
}

// Span returns the exon interval.
func (e Exon) Span() interval.Interval {
	return interval.Interval{Start: e.Start, End: e.End}
}

// Length returns the exon length in bases.
func (e Exon) Length() int64 {
	return e.End - e.Start + 1
}

// IsCoding returns true if the segment is a CDS row.
func (e Exon) IsCoding() bool {
	return e.Type == TypeCDS
}
