package compare

import (
	"cmp"
	"slices"

	"github.com/inodb/vibe-gff/internal/gff"
)

// ExonRow is one classified exon of a transcript pair. Ref and Pred are nil
// for extra and missing exons respectively.
type ExonRow struct {
	Status  Status
	Ref     *gff.Exon
	Pred    *gff.Exon
	Overlap int64
	Ratio   float64
}

// Start returns the genomic start used to order rows.
func (r ExonRow) Start() int64 {
	if r.Ref != nil {
		return r.Ref.Start
	}
	return r.Pred.Start
}

// Rows flattens the classification into one row per exon, ordered by
// genomic position with reference rows before extra rows at the same start.
func (res *Result) Rows() []ExonRow {
	var rows []ExonRow
	for i := range res.Matched {
		p := &res.Matched[i]
		rows = append(rows, ExonRow{Status: StatusMatched, Ref: &p.Ref, Pred: &p.Pred, Overlap: p.Overlap, Ratio: p.Ratio})
	}
	for i := range res.Partial {
		p := &res.Partial[i]
		rows = append(rows, ExonRow{Status: StatusPartial, Ref: &p.Ref, Pred: &p.Pred, Overlap: p.Overlap, Ratio: p.Ratio})
	}
	for i := range res.Missing {
		rows = append(rows, ExonRow{Status: StatusMissing, Ref: &res.Missing[i]})
	}
	for i := range res.Extra {
		rows = append(rows, ExonRow{Status: StatusExtra, Pred: &res.Extra[i]})
	}

	slices.SortStableFunc(rows, func(a, b ExonRow) int {
		return cmp.Or(
			cmp.Compare(a.Start(), b.Start()),
			cmp.Compare(extraRank(a), extraRank(b)),
		)
	})
	return rows
}

func extraRank(r ExonRow) int {
	if r.Ref == nil {
		return 1
	}
	return 0
}
