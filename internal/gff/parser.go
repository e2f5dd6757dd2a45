package gff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
)

// ParseResult holds the outcome of parsing one annotation file.
type ParseResult struct {
	Records   []*Record               // Valid records in input order
	Malformed []*MalformedRecordError // One entry per rejected line
	Skipped   map[string]int          // Unsupported type column -> row count
	Lines     int                     // Lines read, including comments
}

// Err folds every malformed-line error into a single error, or returns nil
// when all lines parsed.
func (r *ParseResult) Err() error {
	var err error
	for _, m := range r.Malformed {
		err = multierr.Append(err, m)
	}
	return err
}

// SkippedCount returns the number of rows skipped for unsupported types.
func (r *ParseResult) SkippedCount() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// maxLineSize bounds a single annotation line. Longer lines are reported as
// malformed and skipped.
const maxLineSize = 1024 * 1024

// Parse reads annotation lines from reader. A bad line never aborts parsing:
// it is recorded in Malformed and the next line is read. The returned error
// is reserved for read failures.
func Parse(reader io.Reader) (*ParseResult, error) {
	br := bufio.NewReaderSize(reader, 64*1024)

	res := &ParseResult{Skipped: make(map[string]int)}

	lineNum := 0
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read annotation: %w", err)
		}
		lineNum++

		if tooLong {
			res.Malformed = append(res.Malformed, &MalformedRecordError{
				Line:   lineNum,
				Reason: fmt.Sprintf("line longer than %d bytes", maxLineSize),
			})
			continue
		}

		line = strings.TrimRight(line, "\r")

		// Embedded sequence section ends the feature table.
		if strings.HasPrefix(line, "##FASTA") {
			break
		}
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line, lineNum)
		if err != nil {
			var malformed *MalformedRecordError
			switch {
			case errors.As(err, &malformed):
				res.Malformed = append(res.Malformed, malformed)
			case errors.Is(err, ErrUnsupportedType):
				res.Skipped[typeColumn(line)]++
			default:
				return nil, err
			}
			continue
		}
		res.Records = append(res.Records, rec)
	}
	res.Lines = lineNum

	return res, nil
}

// readLine returns the next line without its newline. A line over
// maxLineSize is consumed up to its newline and reported as tooLong with
// no content. io.EOF is returned only when no data is left.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	read := false
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && read {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		read = true
		if !tooLong {
			if len(buf)+len(frag) > maxLineSize {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func typeColumn(line string) string {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}
