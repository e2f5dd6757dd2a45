package interval

import "sort"

// Tree provides O(log n + k) overlap queries using a sorted-slice approach.
// Items are loaded once and never modified after build.
type Tree[T any] struct {
	entries []entry[T]
	maxEnd  []int64 // maxEnd[i] = max(End) for entries[:i+1]
}

type entry[T any] struct {
	iv   Interval
	item T
}

// BuildTree creates an interval tree from items, using span to obtain each
// item's interval.
func BuildTree[T any](items []T, span func(T) Interval) *Tree[T] {
	if len(items) == 0 {
		return &Tree[T]{}
	}

	entries := make([]entry[T], len(items))
	for i, it := range items {
		entries[i] = entry[T]{iv: span(it), item: it}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].iv.Start < entries[j].iv.Start
	})

	maxEnd := make([]int64, len(entries))
	maxEnd[0] = entries[0].iv.End
	for i := 1; i < len(entries); i++ {
		maxEnd[i] = max(maxEnd[i-1], entries[i].iv.End)
	}

	return &Tree[T]{entries: entries, maxEnd: maxEnd}
}

// Len returns the number of items in the tree.
func (t *Tree[T]) Len() int {
	return len(t.entries)
}

// Containing returns all items whose interval contains pos.
func (t *Tree[T]) Containing(pos int64) []T {
	return t.Overlapping(pos, pos)
}

// Overlapping returns all items whose interval overlaps [start, end], in
// ascending start order.
func (t *Tree[T]) Overlapping(start, end int64) []T {
	if len(t.entries) == 0 || start > end {
		return nil
	}

	// Candidates must start at or before end; hi is the first index past them.
	hi := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].iv.Start > end
	})

	// maxEnd is non-decreasing, so entries before lo all end before start.
	lo := sort.Search(hi, func(i int) bool {
		return t.maxEnd[i] >= start
	})

	var result []T
	for i := lo; i < hi; i++ {
		if t.entries[i].iv.End >= start {
			result = append(result, t.entries[i].item)
		}
	}
	return result
}
