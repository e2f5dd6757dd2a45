package gff

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Loader reads an annotation file from disk.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a loader for the GFF3/GTF file at path. Files ending in
// .gz are decompressed on the fly.
func NewLoader(path string) *Loader {
	return &Loader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for malformed and skipped line messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load parses the file. Malformed lines are logged and collected in the
// result; only I/O failures return an error.
func (l *Loader) Load() (*ParseResult, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	res, err := Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}

	for _, m := range res.Malformed {
		l.logger.Warn("skipping malformed record",
			zap.String("file", l.path),
			zap.Int("line", m.Line),
			zap.String("reason", m.Reason),
			zap.Error(m.Err))
	}
	for typ, n := range res.Skipped {
		l.logger.Warn("skipping unsupported feature type",
			zap.String("file", l.path),
			zap.String("type", typ),
			zap.Int("rows", n))
	}

	return res, nil
}

// LoadHierarchy parses the file and builds its hierarchy, logging every
// build warning.
func (l *Loader) LoadHierarchy(opts BuildOptions) (*Hierarchy, *ParseResult, error) {
	res, err := l.Load()
	if err != nil {
		return nil, nil, err
	}

	h := Build(res.Records, opts)
	for _, w := range h.Warnings() {
		l.logger.Warn(w.Message,
			zap.String("file", l.path),
			zap.String("kind", string(w.Kind)),
			zap.Int("line", w.Line),
			zap.String("id", w.ID),
			zap.String("parent", w.ParentID))
	}

	l.logger.Info("loaded annotation",
		zap.String("file", l.path),
		zap.Int("genes", h.GeneCount()),
		zap.Int("transcripts", h.TranscriptCount()),
		zap.Int("exons", h.ExonCount()),
		zap.Int("implied", h.ImpliedCount()),
		zap.Int("orphans", len(h.Orphans())),
		zap.Int("malformed", len(res.Malformed)))

	return h, res, nil
}
