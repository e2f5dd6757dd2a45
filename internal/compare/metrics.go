package compare

// Class is the coarse verdict for a comparison.
type Class string

const (
	ClassPerfect     Class = "perfect"
	ClassReasonable  Class = "reasonable"
	ClassSignificant Class = "significant_difference"
	ClassNoData      Class = "no_data"
)

// Thresholds parameterizes Classify.
type Thresholds struct {
	// Reasonable is the non-overlap ratio (exclusive) below which a
	// comparison is reasonable rather than significantly different.
	Reasonable float64
}

// DefaultThresholds returns the 30% non-overlap cut-off.
func DefaultThresholds() Thresholds {
	return Thresholds{Reasonable: 0.30}
}

// Classify maps a non-overlap ratio to a Class.
func Classify(nonOverlap float64, th Thresholds) Class {
	switch {
	case nonOverlap <= 0:
		return ClassPerfect
	case nonOverlap < th.Reasonable:
		return ClassReasonable
	}
	return ClassSignificant
}

// Metrics aggregates one or more Results.
type Metrics struct {
	TotalRefBP      int64
	TotalPredBP     int64
	MatchedBP       int64 // Overlap summed over matched and partial pairs
	OverlapRatio    float64
	NonOverlapRatio float64
	Class           Class

	Matched int
	Partial int
	Missing int
	Extra   int
}

// ComputeMetrics sums base pairs over results and classifies the overlap
// ratio MatchedBP / max(TotalRefBP, TotalPredBP). Nil results are ignored.
func ComputeMetrics(th Thresholds, results ...*Result) Metrics {
	var m Metrics
	for _, r := range results {
		if r == nil {
			continue
		}
		m.TotalRefBP += r.RefBP
		m.TotalPredBP += r.PredBP
		for _, p := range r.Matched {
			m.MatchedBP += p.Overlap
		}
		for _, p := range r.Partial {
			m.MatchedBP += p.Overlap
		}
		m.Matched += len(r.Matched)
		m.Partial += len(r.Partial)
		m.Missing += len(r.Missing)
		m.Extra += len(r.Extra)
	}

	total := max(m.TotalRefBP, m.TotalPredBP)
	if total == 0 {
		m.NonOverlapRatio = 1
		m.Class = ClassNoData
		return m
	}

	m.OverlapRatio = min(float64(m.MatchedBP)/float64(total), 1)
	m.NonOverlapRatio = 1 - m.OverlapRatio
	m.Class = Classify(m.NonOverlapRatio, th)
	return m
}
