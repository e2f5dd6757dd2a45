package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/inodb/vibe-gff/internal/output"
)

func newMatchCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "match <reference> <predicted>",
		Short: "Match predicted genes to reference genes by locus overlap",
		Example: `  vibe-gff match ref.gff3 pred.gff3
  vibe-gff match --overlap-threshold 0.8 --same-strand ref.gff3 pred.gff3`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"overlap-threshold": keyOverlapThreshold,
				"same-strand":       keySameStrand,
				"multi-parent":      keyMultiParent,
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
			unmatched := compare.UnmatchedPredicted(pred, matches)

			out, closeOut, err := openOutput(cmd, outputFile)
			if err != nil {
				return err
			}
			defer closeOut()

			if err := writeMatches(output.NewMatchWriter(out), matches, pred, unmatched); err != nil {
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			summary := output.NewSummaryWriter()
			summary.AddMatches(matches, len(unmatched))
			summary.WriteSummary(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	addMatchFlags(cmd)

	return cmd
}

func addMatchFlags(cmd *cobra.Command) {
	def := compare.DefaultMatchOptions()
	cmd.Flags().Float64("overlap-threshold", def.OverlapThreshold, "Minimum gene span overlap ratio to accept a match (inclusive)")
	cmd.Flags().Bool("same-strand", def.SameStrand, "Reject predicted genes on the opposite strand")
	cmd.Flags().String("multi-parent", string(gff.FirstParent), "Exons with several parents: first or all")
}

func writeMatches(w *output.MatchWriter, matches []compare.GeneMatch, pred *gff.Hierarchy, unmatched []string) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range matches {
		if err := w.Write(m); err != nil {
			return fmt.Errorf("write match %s: %w", m.RefGeneID, err)
		}
	}
	genes := make([]*gff.Gene, 0, len(unmatched))
	for _, id := range unmatched {
		genes = append(genes, pred.Gene(id))
	}
	if err := w.WriteUnmatchedPredicted(genes); err != nil {
		return fmt.Errorf("write unmatched predicted genes: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
