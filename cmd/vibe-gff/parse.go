package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-gff/internal/gff"
	"github.com/inodb/vibe-gff/internal/output"
)

func newParseCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Build and list the gene hierarchy of one annotation file",
		Example: `  vibe-gff parse annotation.gff3
  vibe-gff parse --multi-parent all -o genes.tsv annotation.gff3.gz`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"multi-parent": keyMultiParent})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			buildOpts, err := s.BuildOptions()
			if err != nil {
				return err
			}

			h, res, err := loadHierarchy(args[0], buildOpts)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, outputFile)
			if err != nil {
				return err
			}
			defer closeOut()

			w := output.NewGeneWriter(out)
			if err := w.WriteHeader(); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			for _, g := range h.Genes() {
				if err := w.Write(g); err != nil {
					return fmt.Errorf("write gene %s: %w", g.ID, err)
				}
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("flush output: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}

			output.WriteHierarchySummary(cmd.ErrOrStderr(), filepath.Base(args[0]), h, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("multi-parent", string(gff.FirstParent), "Exons with several parents: first or all")

	return cmd
}

// loadHierarchy loads one annotation file with the CLI logger attached.
func loadHierarchy(path string, opts gff.BuildOptions) (*gff.Hierarchy, *gff.ParseResult, error) {
	loader := gff.NewLoader(path)
	loader.SetLogger(logger)
	h, res, err := loader.LoadHierarchy(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return h, res, nil
}

// openOutput returns the command's stdout, or a created file when path is set.
// The close func is safe to call more than once; only the first call closes.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	var once sync.Once
	var closeErr error
	return f, func() error {
		once.Do(func() {
			if err := f.Close(); err != nil {
				closeErr = fmt.Errorf("close output file: %w", err)
			}
		})
		return closeErr
	}, nil
}
