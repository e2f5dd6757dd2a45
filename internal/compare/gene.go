package compare

import "github.com/inodb/vibe-gff/internal/gff"

// Options bundles every tunable of a comparison run.
type Options struct {
	Match      MatchOptions
	Align      AlignOptions
	Thresholds Thresholds
}

// DefaultOptions returns the default matching, alignment and classification
// settings.
func DefaultOptions() Options {
	return Options{
		Match:      DefaultMatchOptions(),
		Align:      DefaultAlignOptions(),
		Thresholds: DefaultThresholds(),
	}
}

// TranscriptPair is one aligned transcript pairing. Ref is nil for a
// predicted transcript that overlaps no reference transcript; Pred is nil
// for a reference transcript that no predicted transcript chose.
type TranscriptPair struct {
	Ref     *gff.Transcript
	Pred    *gff.Transcript
	Result  *Result
	Metrics Metrics
}

// GeneComparison is the detailed comparison of one reference gene with one
// predicted gene.
type GeneComparison struct {
	RefGene  *gff.Gene
	PredGene *gff.Gene
	Pairs    []TranscriptPair
	Metrics  Metrics
}

// PairTranscripts pairs every predicted transcript of predGene with the
// reference transcript of refGene whose alignment gives the highest overlap
// ratio (earlier reference transcript wins ties). Predicted transcripts
// without any exon overlap are returned unpaired, followed by reference
// transcripts that no predicted transcript chose.
func PairTranscripts(refGene, predGene *gff.Gene, opts Options) []TranscriptPair {
	var refTx, predTx []*gff.Transcript
	if refGene != nil {
		refTx = refGene.Transcripts
	}
	if predGene != nil {
		predTx = predGene.Transcripts
	}

	chosen := make(map[*gff.Transcript]bool)
	pairs := make([]TranscriptPair, 0, len(predTx))

	for _, pt := range predTx {
		var best TranscriptPair
		for _, rt := range refTx {
			res := AlignTranscripts(rt, pt, opts.Align)
			m := ComputeMetrics(opts.Thresholds, res)
			if m.MatchedBP == 0 {
				continue
			}
			if best.Ref == nil || m.OverlapRatio > best.Metrics.OverlapRatio {
				best = TranscriptPair{Ref: rt, Pred: pt, Result: res, Metrics: m}
			}
		}

		if best.Ref == nil {
			res := AlignTranscripts(nil, pt, opts.Align)
			best = TranscriptPair{Pred: pt, Result: res, Metrics: ComputeMetrics(opts.Thresholds, res)}
		} else {
			chosen[best.Ref] = true
		}
		pairs = append(pairs, best)
	}

	for _, rt := range refTx {
		if chosen[rt] {
			continue
		}
		res := AlignTranscripts(rt, nil, opts.Align)
		pairs = append(pairs, TranscriptPair{Ref: rt, Result: res, Metrics: ComputeMetrics(opts.Thresholds, res)})
	}

	return pairs
}

// CompareGenes pairs the transcripts of two genes, aligns each pair and
// aggregates gene-level metrics over all pairs.
func CompareGenes(refGene, predGene *gff.Gene, opts Options) *GeneComparison {
	gc := &GeneComparison{
		RefGene:  refGene,
		PredGene: predGene,
		Pairs:    PairTranscripts(refGene, predGene, opts),
	}

	results := make([]*Result, len(gc.Pairs))
	for i, p := range gc.Pairs {
		results[i] = p.Result
	}
	gc.Metrics = ComputeMetrics(opts.Thresholds, results...)
	return gc
}
