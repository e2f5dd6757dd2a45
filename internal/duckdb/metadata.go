package duckdb

import (
	"fmt"
	"os"
	"time"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

// FileFingerprint holds stat-based identity for an input file. Runs record
// it instead of the file contents.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run describes one comparison of a reference against a predicted file.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Ref       FileFingerprint
	Pred      FileFingerprint
	Build     gff.BuildOptions
	Options   compare.Options
}

// WriteRun inserts a run row with every setting that shaped its results and
// returns its ID. IDs increase by one per run within a database.
func (s *Store) WriteRun(ref, pred FileFingerprint, build gff.BuildOptions, opts compare.Options) (int64, error) {
	var id int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) + 1 FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}

	multiParent := build.MultiParent
	if multiParent == "" {
		multiParent = gff.FirstParent
	}

	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(),
		ref.Path, ref.Size, ref.ModTime.UTC(),
		pred.Path, pred.Size, pred.ModTime.UTC(),
		opts.Match.OverlapThreshold, opts.Align.FullMatchThreshold,
		opts.Align.ExactBoundaries, string(opts.Align.Segments),
		opts.Match.SameStrand, opts.Thresholds.Reasonable, string(multiParent),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Runs returns every recorded run ordered by ID.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		id, created_at,
		ref_path, ref_size, ref_mtime,
		pred_path, pred_size, pred_mtime,
		overlap_threshold, full_match_threshold, exact_boundaries, segments,
		same_strand, reasonable_threshold, multi_parent
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var segments, multiParent string
		if err := rows.Scan(
			&r.ID, &r.CreatedAt,
			&r.Ref.Path, &r.Ref.Size, &r.Ref.ModTime,
			&r.Pred.Path, &r.Pred.Size, &r.Pred.ModTime,
			&r.Options.Match.OverlapThreshold, &r.Options.Align.FullMatchThreshold,
			&r.Options.Align.ExactBoundaries, &segments,
			&r.Options.Match.SameStrand, &r.Options.Thresholds.Reasonable, &multiParent,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Options.Align.Segments = compare.SegmentMode(segments)
		r.Build.MultiParent = gff.MultiParentPolicy(multiParent)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
