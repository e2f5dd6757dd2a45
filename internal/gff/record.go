// Package gff parses GFF3/GTF annotation files and rebuilds the
// gene -> transcript -> exon/CDS hierarchy they describe.
package gff

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/inodb/vibe-gff/internal/interval"
)

// FeatureType is the kind of feature a record describes.
type FeatureType string

// Supported feature types.
const (
	TypeGene       FeatureType = "gene"
	TypeTranscript FeatureType = "transcript"
	TypeExon       FeatureType = "exon"
	TypeCDS        FeatureType = "CDS"
)

// featureTypes maps the type column to a FeatureType. mRNA rows are
// transcripts in most GFF3 gene-model files.
var featureTypes = map[string]FeatureType{
	"gene":       TypeGene,
	"transcript": TypeTranscript,
	"mRNA":       TypeTranscript,
	"exon":       TypeExon,
	"CDS":        TypeCDS,
}

// Strand is +1 (forward), -1 (reverse) or 0 (unknown).
type Strand int8

// Strand values.
const (
	StrandUnknown Strand = 0
	StrandForward Strand = 1
	StrandReverse Strand = -1
)

// String returns the GFF column representation of the strand.
func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	}
	return "."
}

// ErrUnsupportedType is returned for rows whose type column is outside the
// gene/transcript/exon/CDS model. Such rows are skipped, not failed.
var ErrUnsupportedType = errors.New("unsupported feature type")

// MalformedRecordError reports a line that cannot be turned into a Record.
type MalformedRecordError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Record is one parsed annotation line. Records are not modified after
// parsing.
type Record struct {
	Line       int         // 1-based line number in the source
	SeqID      string      // Sequence (chromosome/contig) name
	Source     string      // Annotation source column
	Type       FeatureType // Normalized feature type
	RawType    string      // Type column as written (e.g. mRNA)
	Start      int64       // 1-based start
	End        int64       // 1-based end, inclusive
	Strand     Strand
	Phase      string
	ID         string   // ID attribute, empty when absent
	ParentIDs  []string // Parent attribute, in declaration order
	Attributes map[string]string
	GTF        bool // Attribute column used the GTF form
}

// Span returns the record's closed interval.
func (r *Record) Span() interval.Interval {
	return interval.Interval{Start: r.Start, End: r.End}
}

// Length returns the number of bases covered by the record.
func (r *Record) Length() int64 {
	return r.End - r.Start + 1
}

// ParseLine parses a single tab-delimited annotation line. lineNum is used
// for error reporting only.
func ParseLine(line string, lineNum int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, &MalformedRecordError{
			Line:   lineNum,
			Reason: fmt.Sprintf("expected 9 fields, got %d", len(fields)),
		}
	}

	ft, ok := featureTypes[fields[2]]
	if !ok {
		return nil, fmt.Errorf("line %d: %w: %s", lineNum, ErrUnsupportedType, fields[2])
	}

	start, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
	if err != nil {
		return nil, &MalformedRecordError{Line: lineNum, Reason: "parse start", Err: err}
	}
	end, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
	if err != nil {
		return nil, &MalformedRecordError{Line: lineNum, Reason: "parse end", Err: err}
	}
	if start > end {
		return nil, &MalformedRecordError{
			Line:   lineNum,
			Reason: fmt.Sprintf("start %d is after end %d", start, end),
		}
	}

	rec := &Record{
		Line:    lineNum,
		SeqID:   fields[0],
		Source:  fields[1],
		Type:    ft,
		RawType: fields[2],
		Start:   start,
		End:     end,
		Strand:  parseStrand(fields[6]),
		Phase:   fields[7],
	}

	if isGTFAttributes(fields[8]) {
		rec.GTF = true
		rec.Attributes = parseGTFAttributes(fields[8])
		rec.ID, rec.ParentIDs = gtfIdentity(ft, rec.Attributes)
	} else {
		rec.Attributes = parseAttributes(fields[8])
		rec.ID = unescape(rec.Attributes["ID"])
		rec.ParentIDs = splitParents(rec.Attributes["Parent"])
	}

	return rec, nil
}

// parseAttributes parses the GFF3 attribute column.
// Format: key=value;key=value
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return attrs
}

// splitParents splits a Parent value into its IDs. Percent-decoding happens
// after the split so an encoded comma stays inside one ID.
func splitParents(parent string) []string {
	if parent == "" {
		return nil
	}
	var ids []string
	for _, p := range strings.Split(parent, ",") {
		p = unescape(strings.TrimSpace(p))
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// unescape decodes GFF3 percent-encoding (%3B, %2C, ...). Values with
// invalid escapes are returned unchanged.
func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// isGTFAttributes reports whether the attribute column uses the GTF
// `key "value";` form rather than GFF3 `key=value`.
func isGTFAttributes(attrStr string) bool {
	return !strings.Contains(attrStr, "=") && strings.Contains(attrStr, "\"")
}

// parseGTFAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
func parseGTFAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[key] = value
	}

	return attrs
}

// gtfIdentity derives ID and parents for a GTF row, where hierarchy is
// expressed through gene_id/transcript_id instead of ID/Parent.
func gtfIdentity(ft FeatureType, attrs map[string]string) (string, []string) {
	geneID := attrs["gene_id"]
	txID := attrs["transcript_id"]

	switch ft {
	case TypeGene:
		return geneID, nil
	case TypeTranscript:
		if geneID == "" {
			return txID, nil
		}
		return txID, []string{geneID}
	default:
		if txID == "" {
			return "", nil
		}
		return "", []string{txID}
	}
}

// parseStrand converts the strand column to a Strand.
func parseStrand(s string) Strand {
	switch s {
	case "+":
		return StrandForward
	case "-":
		return StrandReverse
	}
	return StrandUnknown
}
