// Package interval provides closed-interval overlap arithmetic and an
// immutable interval index over genomic coordinates.
package interval

// Interval is a closed integer range [Start, End] (1-based, inclusive).
type Interval struct {
	Start int64
	End   int64
}

// Length returns the number of positions covered by the interval.
func (iv Interval) Length() int64 {
	return iv.End - iv.Start + 1
}

// Contains returns true if pos lies within the interval.
func (iv Interval) Contains(pos int64) bool {
	return pos >= iv.Start && pos <= iv.End
}

// OverlapLength returns the number of positions shared by a and b, or 0 when
// they are disjoint.
func OverlapLength(a, b Interval) int64 {
	n := min(a.End, b.End) - max(a.Start, b.Start) + 1
	if n < 0 {
		return 0
	}
	return n
}

// OverlapRatio returns the overlap length divided by the longer of the two
// interval lengths. A short interval contained in a long one therefore
// scores below 1.0; only equal intervals score exactly 1.0.
func OverlapRatio(a, b Interval) float64 {
	n := OverlapLength(a, b)
	if n == 0 {
		return 0
	}
	longest := max(a.Length(), b.Length())
	if longest <= 0 {
		return 0
	}
	return float64(n) / float64(longest)
}

// Overlaps returns true if a and b share at least one position.
func Overlaps(a, b Interval) bool {
	return OverlapLength(a, b) > 0
}
