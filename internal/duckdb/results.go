package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-gff/internal/compare"
)

// appendRows opens an Appender on table and calls fill with it. The appender
// is flushed when fill returns without error.
func (s *Store) appendRows(table string, fill func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// WriteGeneMatches batch-inserts gene matches for a run using the Appender API.
func (s *Store) WriteGeneMatches(runID int64, matches []compare.GeneMatch) error {
	if len(matches) == 0 {
		return nil
	}

	return s.appendRows("gene_matches", func(a *goduckdb.Appender) error {
		for _, m := range matches {
			if err := a.AppendRow(
				runID, m.RefGeneID, nullString(m.PredGeneID), nullString(m.Candidate),
				m.SeqID, m.Overlap, m.Ratio, m.Matched,
			); err != nil {
				return fmt.Errorf("append gene match: %w", err)
			}
		}
		return nil
	})
}

// WriteComparisons batch-inserts one exon_results row per classified exon of
// every comparison.
func (s *Store) WriteComparisons(runID int64, comparisons []*compare.GeneComparison) error {
	if len(comparisons) == 0 {
		return nil
	}

	return s.appendRows("exon_results", func(a *goduckdb.Appender) error {
		for _, gc := range comparisons {
			refGene, predGene := geneIDs(gc)
			for _, pair := range gc.Pairs {
				for _, row := range pair.Result.Rows() {
					seg := row.Pred
					if row.Ref != nil {
						seg = row.Ref
					}
					var refStart, refEnd, predStart, predEnd, overlap, ratio driver.Value
					if row.Ref != nil {
						refStart, refEnd = row.Ref.Start, row.Ref.End
					}
					if row.Pred != nil {
						predStart, predEnd = row.Pred.Start, row.Pred.End
					}
					if row.Ref != nil && row.Pred != nil {
						overlap, ratio = row.Overlap, row.Ratio
					}

					if err := a.AppendRow(
						runID, refGene, predGene,
						nullString(pair.Result.RefTranscriptID), nullString(pair.Result.PredTranscriptID),
						string(seg.Type), string(row.Status),
						refStart, refEnd, predStart, predEnd, overlap, ratio,
					); err != nil {
						return fmt.Errorf("append exon result: %w", err)
					}
				}
			}
		}
		return nil
	})
}

// ExonStatusCounts returns the number of exon rows per status for a run.
func (s *Store) ExonStatusCounts(runID int64) (map[compare.Status]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM exon_results
		WHERE run_id=? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("query exon status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[compare.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan exon status count: %w", err)
		}
		counts[compare.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exon status counts: %w", err)
	}
	return counts, nil
}

// GeneMatchRow is a stored gene match.
type GeneMatchRow struct {
	RefGeneID  string
	PredGeneID string
	Candidate  string
	SeqID      string
	Overlap    int64
	Ratio      float64
	Matched    bool
}

// GeneMatches returns the gene matches stored for a run, ordered by
// reference gene ID.
func (s *Store) GeneMatches(runID int64) ([]GeneMatchRow, error) {
	rows, err := s.db.Query(`SELECT
		ref_gene_id, pred_gene_id, candidate, seqid, overlap, ratio, matched
		FROM gene_matches
		WHERE run_id=?
		ORDER BY ref_gene_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query gene matches: %w", err)
	}
	defer rows.Close()

	var out []GeneMatchRow
	for rows.Next() {
		var r GeneMatchRow
		var pred, candidate sql.NullString
		if err := rows.Scan(&r.RefGeneID, &pred, &candidate, &r.SeqID, &r.Overlap, &r.Ratio, &r.Matched); err != nil {
			return nil, fmt.Errorf("scan gene match: %w", err)
		}
		r.PredGeneID = pred.String
		r.Candidate = candidate.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene matches: %w", err)
	}
	return out, nil
}

func geneIDs(gc *compare.GeneComparison) (driver.Value, driver.Value) {
	var ref, pred driver.Value
	if gc.RefGene != nil {
		ref = gc.RefGene.ID
	}
	if gc.PredGene != nil {
		pred = gc.PredGene.ID
	}
	return ref, pred
}

func nullString(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}
