package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/duckdb"
	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/inodb/vibe-gff/internal/output"
)

func newCompareCmd() *cobra.Command {
	var (
		outputFile string
		geneID     string
		duckdbPath string
	)

	cmd := &cobra.Command{
		Use:   "compare <reference> <predicted>",
		Short: "Classify exons of matched genes as matched, partial, missing or extra",
		Example: `  vibe-gff compare ref.gff3 pred.gff3
  vibe-gff compare --gene geneA ref.gff3 pred.gff3
  vibe-gff compare --segments CDS --exact --duckdb results.duckdb ref.gff3 pred.gff3`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"overlap-threshold":    keyOverlapThreshold,
				"same-strand":          keySameStrand,
				"multi-parent":         keyMultiParent,
				"full-match-threshold": keyFullMatchThreshold,
				"exact":                keyExact,
				"segments":             keySegments,
				"reasonable-threshold": keyReasonableThreshold,
				"workers":              keyWorkers,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			opts, err := s.CompareOptions()
			if err != nil {
				return err
			}
			buildOpts, err := s.BuildOptions()
			if err != nil {
				return err
			}

			ref, _, err := loadHierarchy(args[0], buildOpts)
			if err != nil {
				return err
			}
			pred, _, err := loadHierarchy(args[1], buildOpts)
			if err != nil {
				return err
			}

			matches := compare.FindGeneMatches(ref, pred, opts.Match)
			if geneID != "" {
				matches, err = selectGene(ref, pred, matches, geneID)
				if err != nil {
					return err
				}
			}

			out, closeOut, err := openOutput(cmd, outputFile)
			if err != nil {
				return err
			}
			defer closeOut()

			w := output.NewExonWriter(out)
			if err := w.WriteHeader(); err != nil {
				return fmt.Errorf("write header: %w", err)
			}

			summary := output.NewSummaryWriter()
			unmatched := 0
			if geneID == "" {
				unmatched = len(compare.UnmatchedPredicted(pred, matches))
			}
			summary.AddMatches(matches, unmatched)

			var comparisons []*compare.GeneComparison
			c := compare.NewComparer(opts)
			c.SetLogger(logger)
			err = c.CompareAll(matches, s.Compare.Workers, func(gc *compare.GeneComparison) error {
				summary.AddComparison(gc)
				if duckdbPath != "" {
					comparisons = append(comparisons, gc)
				}
				return w.WriteComparison(gc)
			})
			if err != nil {
				return fmt.Errorf("compare genes: %w", err)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("flush output: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}

			if duckdbPath != "" {
				if err := exportResults(duckdbPath, args[0], args[1], buildOpts, opts, matches, comparisons); err != nil {
					return err
				}
			}

			summary.WriteSummary(cmd.ErrOrStderr())
			return nil
		},
	}

	def := compare.DefaultOptions()
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&geneID, "gene", "", "Compare a single reference gene")
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "Also export results to this DuckDB file")
	addMatchFlags(cmd)
	cmd.Flags().Float64("full-match-threshold", def.Align.FullMatchThreshold, "Minimum exon overlap ratio for a full match (inclusive)")
	cmd.Flags().Bool("exact", def.Align.ExactBoundaries, "Require identical exon boundaries for a full match")
	cmd.Flags().String("segments", string(def.Align.Segments), "Segments to align: exon, CDS or all")
	cmd.Flags().Float64("reasonable-threshold", def.Thresholds.Reasonable, "Non-overlap ratio below which a comparison is reasonable")
	cmd.Flags().Int("workers", 0, "Number of comparison workers (default: number of CPUs)")

	return cmd
}

// selectGene restricts matches to one reference gene. A predicted gene with
// the same ID is preferred over the overlap match, since both files often
// share gene IDs.
func selectGene(ref, pred *gff.Hierarchy, matches []compare.GeneMatch, id string) ([]compare.GeneMatch, error) {
	refGene := ref.Gene(id)
	if refGene == nil {
		return nil, fmt.Errorf("gene %s not found in reference", id)
	}

	var m compare.GeneMatch
	for _, candidate := range matches {
		if candidate.RefGeneID == id {
			m = candidate
			break
		}
	}

	if predGene := pred.Gene(id); predGene != nil && predGene.SeqID == refGene.SeqID {
		m = compare.PairGenes(refGene, predGene)
	}

	if !m.Matched {
		return nil, fmt.Errorf("gene %s has no predicted match", id)
	}
	return []compare.GeneMatch{m}, nil
}

func exportResults(path, refPath, predPath string, buildOpts gff.BuildOptions, opts compare.Options, matches []compare.GeneMatch, comparisons []*compare.GeneComparison) error {
	refFP, err := duckdb.StatFile(refPath)
	if err != nil {
		return fmt.Errorf("stat reference: %w", err)
	}
	predFP, err := duckdb.StatFile(predPath)
	if err != nil {
		return fmt.Errorf("stat prediction: %w", err)
	}

	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.WriteRun(refFP, predFP, buildOpts, opts)
	if err != nil {
		return err
	}
	if err := store.WriteGeneMatches(runID, matches); err != nil {
		return err
	}
	if err := store.WriteComparisons(runID, comparisons); err != nil {
		return err
	}

	logger.Info("exported results",
		zap.String("path", path),
		zap.Int64("run", runID),
		zap.Int("genes", len(comparisons)))
	return nil
}
