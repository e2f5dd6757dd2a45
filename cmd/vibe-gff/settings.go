package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-gff/internal/compare"
	"github.com/inodb/vibe-gff/internal/gff"
)

// Config keys. Nested keys map to sections of ~/.vibe-gff.yaml and to
// VIBE_GFF_* environment variables (dots and dashes become underscores).
const (
	keyOverlapThreshold    = "match.overlap-threshold"
	keySameStrand          = "match.same-strand"
	keyFullMatchThreshold  = "compare.full-match-threshold"
	keyExact               = "compare.exact"
	keySegments            = "compare.segments"
	keyReasonableThreshold = "compare.reasonable-threshold"
	keyWorkers             = "compare.workers"
	keyMultiParent         = "hierarchy.multi-parent"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

func setDefaults() {
	opts := compare.DefaultOptions()
	viper.SetDefault(keyOverlapThreshold, opts.Match.OverlapThreshold)
	viper.SetDefault(keySameStrand, opts.Match.SameStrand)
	viper.SetDefault(keyFullMatchThreshold, opts.Align.FullMatchThreshold)
	viper.SetDefault(keyExact, opts.Align.ExactBoundaries)
	viper.SetDefault(keySegments, string(opts.Align.Segments))
	viper.SetDefault(keyReasonableThreshold, opts.Thresholds.Reasonable)
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keyMultiParent, string(gff.FirstParent))
}

// Settings is the resolved configuration of one command run: flags override
// environment, which overrides the config file, which overrides defaults.
type Settings struct {
	Match     MatchSettings     `mapstructure:"match"`
	Compare   CompareSettings   `mapstructure:"compare"`
	Hierarchy HierarchySettings `mapstructure:"hierarchy"`
}

// MatchSettings configures gene matching.
type MatchSettings struct {
	OverlapThreshold float64 `mapstructure:"overlap-threshold"`
	SameStrand       bool    `mapstructure:"same-strand"`
}

// CompareSettings configures exon alignment and classification.
type CompareSettings struct {
	FullMatchThreshold  float64 `mapstructure:"full-match-threshold"`
	Exact               bool    `mapstructure:"exact"`
	Segments            string  `mapstructure:"segments"`
	ReasonableThreshold float64 `mapstructure:"reasonable-threshold"`
	Workers             int     `mapstructure:"workers"`
}

// HierarchySettings configures hierarchy construction.
type HierarchySettings struct {
	MultiParent string `mapstructure:"multi-parent"`
}

// loadSettings decodes the current viper state.
func loadSettings() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// BuildOptions returns the hierarchy options for these settings.
func (s Settings) BuildOptions() (gff.BuildOptions, error) {
	policy, err := gff.ParseMultiParentPolicy(s.Hierarchy.MultiParent)
	if err != nil {
		return gff.BuildOptions{}, err
	}
	return gff.BuildOptions{MultiParent: policy}, nil
}

// CompareOptions returns the comparison options for these settings.
func (s Settings) CompareOptions() (compare.Options, error) {
	segments, err := compare.ParseSegmentMode(s.Compare.Segments)
	if err != nil {
		return compare.Options{}, err
	}
	if err := checkRatio("overlap threshold", s.Match.OverlapThreshold); err != nil {
		return compare.Options{}, err
	}
	if err := checkRatio("full match threshold", s.Compare.FullMatchThreshold); err != nil {
		return compare.Options{}, err
	}
	if err := checkRatio("reasonable threshold", s.Compare.ReasonableThreshold); err != nil {
		return compare.Options{}, err
	}

	return compare.Options{
		Match: compare.MatchOptions{
			OverlapThreshold: s.Match.OverlapThreshold,
			SameStrand:       s.Match.SameStrand,
		},
		Align: compare.AlignOptions{
			FullMatchThreshold: s.Compare.FullMatchThreshold,
			ExactBoundaries:    s.Compare.Exact,
			Segments:           segments,
		},
		Thresholds: compare.Thresholds{Reasonable: s.Compare.ReasonableThreshold},
	}, nil
}

func checkRatio(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

// bindFlags binds the named flags of cmd to config keys. It runs in PreRunE
// so that only the executing command's flags are bound.
func bindFlags(cmd *cobra.Command, flags map[string]string) error {
	for name, key := range flags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
