package gff

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/inodb/vibe-gff/internal/interval"
)

// MultiParentPolicy decides which transcripts receive an exon/CDS record
// that lists several parents.
type MultiParentPolicy string

const (
	// FirstParent attaches the record to the first parent that names a known
	// transcript. Additional resolvable parents are reported as
	// WarnAmbiguousParent.
	FirstParent MultiParentPolicy = "first"
	// AllParents attaches a copy of the record to every parent that names a
	// known transcript (exons shared between isoforms).
	AllParents MultiParentPolicy = "all"
)

// ParseMultiParentPolicy converts a config value into a policy.
func ParseMultiParentPolicy(s string) (MultiParentPolicy, error) {
	switch MultiParentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FirstParent:
		return FirstParent, nil
	case AllParents:
		return AllParents, nil
	}
	return "", fmt.Errorf("unknown multi-parent policy %q (want first or all)", s)
}

// BuildOptions configures hierarchy construction.
type BuildOptions struct {
	MultiParent MultiParentPolicy
}

// WarningKind classifies a non-fatal build problem.
type WarningKind string

const (
	WarnOrphanReference WarningKind = "orphan_reference"
	WarnMissingID       WarningKind = "missing_id"
	WarnDuplicateID     WarningKind = "duplicate_id"
	WarnAmbiguousParent WarningKind = "ambiguous_parent"
	WarnSpanViolation   WarningKind = "span_violation"
)

// Warning describes a record that was excluded from, or tolerated in, the
// hierarchy.
type Warning struct {
	Kind     WarningKind
	Line     int
	ID       string
	ParentID string
	Message  string
	Record   *Record
}

// Hierarchy maps gene IDs to their gene trees. It is read-only after Build
// and safe for concurrent readers.
type Hierarchy struct {
	genes       map[string]*Gene
	ordered     []*Gene
	transcripts map[string]*Transcript
	trees       map[string]*interval.Tree[*Gene]
	orphans     []*Record
	warnings    []Warning
	exonCount   int
	implied     int
}

// Build assembles records into a Hierarchy. Records may appear in any order;
// children are resolved after every gene and transcript has been indexed.
// Build never fails: problem records are excluded and reported through
// Warnings and Orphans.
func Build(records []*Record, opts BuildOptions) *Hierarchy {
	if opts.MultiParent == "" {
		opts.MultiParent = FirstParent
	}

	b := &builder{
		h: &Hierarchy{
			genes:       make(map[string]*Gene),
			transcripts: make(map[string]*Transcript),
			trees:       make(map[string]*interval.Tree[*Gene]),
		},
		geneRecs: make(map[string]*Record),
		txRecs:   make(map[string]*Record),
	}

	// Pass 1: index genes and transcripts by ID.
	for _, r := range records {
		switch r.Type {
		case TypeGene:
			b.index(b.geneRecs, r)
		case TypeTranscript:
			b.index(b.txRecs, r)
		}
	}

	// GTF files often leave out transcript and gene rows; those parents are
	// implied by transcript_id and gene_id.
	var segs []*Record
	for _, r := range records {
		if r.Type == TypeExon || r.Type == TypeCDS {
			segs = append(segs, r)
		}
	}
	b.implyParents(segs, b.txRecs, TypeTranscript)
	txs := make([]*Record, 0, len(b.txRecs))
	for _, id := range sortedKeys(b.txRecs) {
		txs = append(txs, b.txRecs[id])
	}
	b.implyParents(txs, b.geneRecs, TypeGene)

	// Pass 2: resolve parents, top-down so exon resolution sees only
	// transcripts that made it into the tree.
	for _, id := range sortedKeys(b.geneRecs) {
		r := b.geneRecs[id]
		b.h.genes[id] = &Gene{
			ID:     id,
			SeqID:  r.SeqID,
			Start:  r.Start,
			End:    r.End,
			Strand: r.Strand,
			Line:   r.Line,
		}
	}
	for _, id := range sortedKeys(b.txRecs) {
		b.attachTranscript(b.txRecs[id])
	}
	for _, r := range records {
		if r.Type == TypeExon || r.Type == TypeCDS {
			b.attachSegment(r, opts.MultiParent)
		}
	}

	b.h.normalize()
	return b.h
}

type builder struct {
	h        *Hierarchy
	geneRecs map[string]*Record
	txRecs   map[string]*Record
}

// index stores r under its ID. Among duplicates the record with the
// smallest (start, end, line) wins so the choice does not follow input order.
func (b *builder) index(m map[string]*Record, r *Record) {
	if r.ID == "" {
		b.orphan(r, WarnMissingID, "", fmt.Sprintf("%s record has no ID", r.Type))
		return
	}
	prev, ok := m[r.ID]
	if !ok {
		m[r.ID] = r
		return
	}
	keep, drop := prev, r
	if compareRecords(r, prev) < 0 {
		keep, drop = r, prev
	}
	m[r.ID] = keep
	b.warn(Warning{
		Kind:    WarnDuplicateID,
		Line:    drop.Line,
		ID:      drop.ID,
		Message: fmt.Sprintf("duplicate %s ID, keeping line %d", drop.Type, keep.Line),
		Record:  drop,
	})
}

// implyParents adds a synthetic parent of type typ for every GTF child
// whose parent ID is not in known. The parent spans its children on the
// lowest sequence name among them.
func (b *builder) implyParents(children []*Record, known map[string]*Record, typ FeatureType) {
	sorted := make([]*Record, 0, len(children))
	for _, c := range children {
		if c.GTF && len(c.ParentIDs) > 0 {
			if _, ok := known[c.ParentIDs[0]]; !ok {
				sorted = append(sorted, c)
			}
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return cmp.Or(
			cmp.Compare(sorted[i].SeqID, sorted[j].SeqID),
			compareRecords(sorted[i], sorted[j]),
		) < 0
	})

	implied := make(map[string]*Record)
	for _, c := range sorted {
		id := c.ParentIDs[0]
		p, ok := implied[id]
		if !ok {
			p = &Record{
				Line:       c.Line,
				SeqID:      c.SeqID,
				Source:     c.Source,
				Type:       typ,
				RawType:    string(typ),
				Start:      c.Start,
				End:        c.End,
				Strand:     c.Strand,
				Phase:      ".",
				ID:         id,
				Attributes: map[string]string{},
				GTF:        true,
			}
			if typ == TypeTranscript {
				p.Attributes["transcript_id"] = id
				if geneID := c.Attributes["gene_id"]; geneID != "" {
					p.Attributes["gene_id"] = geneID
					p.ParentIDs = []string{geneID}
				}
			} else {
				p.Attributes["gene_id"] = id
			}
			implied[id] = p
			continue
		}
		if c.SeqID != p.SeqID {
			continue
		}
		p.Start = min(p.Start, c.Start)
		p.End = max(p.End, c.End)
		p.Line = min(p.Line, c.Line)
	}

	for id, p := range implied {
		known[id] = p
	}
	b.h.implied += len(implied)
}

func (b *builder) attachTranscript(r *Record) {
	var gene *Gene
	for _, pid := range r.ParentIDs {
		if g, ok := b.h.genes[pid]; ok {
			gene = g
			break
		}
	}
	if gene == nil {
		b.orphan(r, WarnOrphanReference, firstParent(r), "transcript parent gene not found")
		return
	}

	t := &Transcript{
		ID:     r.ID,
		GeneID: gene.ID,
		SeqID:  r.SeqID,
		Start:  r.Start,
		End:    r.End,
		Strand: r.Strand,
		Line:   r.Line,
	}
	gene.Transcripts = append(gene.Transcripts, t)
	b.h.transcripts[t.ID] = t

	if r.SeqID != gene.SeqID || r.Start < gene.Start || r.End > gene.End {
		b.warn(Warning{
			Kind:     WarnSpanViolation,
			Line:     r.Line,
			ID:       r.ID,
			ParentID: gene.ID,
			Message: fmt.Sprintf("transcript %s:%d-%d extends beyond gene %s:%d-%d",
				r.SeqID, r.Start, r.End, gene.SeqID, gene.Start, gene.End),
			Record: r,
		})
	}
}

func (b *builder) attachSegment(r *Record, policy MultiParentPolicy) {
	var parents []*Transcript
	for _, pid := range r.ParentIDs {
		if t, ok := b.h.transcripts[pid]; ok && !slices.Contains(parents, t) {
			parents = append(parents, t)
		}
	}

	if len(parents) == 0 {
		msg := fmt.Sprintf("%s parent transcript not found", r.Type)
		for _, pid := range r.ParentIDs {
			if _, ok := b.txRecs[pid]; ok {
				msg = fmt.Sprintf("%s parent transcript %s is not in the hierarchy", r.Type, pid)
				break
			}
		}
		b.orphan(r, WarnOrphanReference, firstParent(r), msg)
		return
	}

	if policy == FirstParent && len(parents) > 1 {
		b.warn(Warning{
			Kind:     WarnAmbiguousParent,
			Line:     r.Line,
			ID:       r.ID,
			ParentID: parents[0].ID,
			Message:  fmt.Sprintf("%s has %d transcript parents, attached to the first only", r.Type, len(parents)),
			Record:   r,
		})
		parents = parents[:1]
	}

	seg := Exon{
		ID:    r.ID,
		Type:  r.Type,
		Start: r.Start,
		End:   r.End,
		Phase: r.Phase,
		Line:  r.Line,
	}
	for _, t := range parents {
		t.Exons = append(t.Exons, seg)
		b.h.exonCount++
	}
}

func (b *builder) orphan(r *Record, kind WarningKind, parentID, msg string) {
	b.h.orphans = append(b.h.orphans, r)
	b.warn(Warning{
		Kind:     kind,
		Line:     r.Line,
		ID:       r.ID,
		ParentID: parentID,
		Message:  msg,
		Record:   r,
	})
}

func (b *builder) warn(w Warning) {
	b.h.warnings = append(b.h.warnings, w)
}

// normalize sorts every level of the tree and builds the per-sequence gene
// index. Callers rely on this order and never re-sort.
func (h *Hierarchy) normalize() {
	for _, g := range h.genes {
		sort.Slice(g.Transcripts, func(i, j int) bool {
			a, b := g.Transcripts[i], g.Transcripts[j]
			return cmp.Or(
				cmp.Compare(a.Start, b.Start),
				cmp.Compare(a.End, b.End),
				cmp.Compare(a.ID, b.ID),
			) < 0
		})
		for _, t := range g.Transcripts {
			sort.Slice(t.Exons, func(i, j int) bool {
				return compareExons(t.Exons[i], t.Exons[j]) < 0
			})
		}
		h.ordered = append(h.ordered, g)
	}

	sort.Slice(h.ordered, func(i, j int) bool {
		a, b := h.ordered[i], h.ordered[j]
		return cmp.Or(
			cmp.Compare(a.SeqID, b.SeqID),
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
			cmp.Compare(a.ID, b.ID),
		) < 0
	})

	bySeq := make(map[string][]*Gene)
	for _, g := range h.ordered {
		bySeq[g.SeqID] = append(bySeq[g.SeqID], g)
	}
	for seq, genes := range bySeq {
		h.trees[seq] = interval.BuildTree(genes, (*Gene).Span)
	}

	sort.SliceStable(h.warnings, func(i, j int) bool {
		return h.warnings[i].Line < h.warnings[j].Line
	})
	sort.SliceStable(h.orphans, func(i, j int) bool {
		return h.orphans[i].Line < h.orphans[j].Line
	})
}

func compareExons(a, b Exon) int {
	return cmp.Or(
		cmp.Compare(a.Start, b.Start),
		cmp.Compare(a.End, b.End),
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.ID, b.ID),
		cmp.Compare(a.Phase, b.Phase),
		cmp.Compare(a.Line, b.Line),
	)
}

func compareRecords(a, b *Record) int {
	return cmp.Or(
		cmp.Compare(a.Start, b.Start),
		cmp.Compare(a.End, b.End),
		cmp.Compare(a.Line, b.Line),
	)
}

func firstParent(r *Record) string {
	if len(r.ParentIDs) == 0 {
		return ""
	}
	return r.ParentIDs[0]
}

func sortedKeys(m map[string]*Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Gene returns the gene with the given ID, or nil.
func (h *Hierarchy) Gene(id string) *Gene {
	return h.genes[id]
}

// Genes returns all genes ordered by sequence, start, end and ID.
func (h *Hierarchy) Genes() []*Gene {
	return h.ordered
}

// Transcript returns the transcript with the given ID, or nil.
func (h *Hierarchy) Transcript(id string) *Transcript {
	return h.transcripts[id]
}

// FindGenes returns genes on seqID whose span overlaps [start, end].
func (h *Hierarchy) FindGenes(seqID string, start, end int64) []*Gene {
	tree, ok := h.trees[seqID]
	if !ok {
		return nil
	}
	return tree.Overlapping(start, end)
}

// SeqIDs returns a sorted list of sequences that carry at least one gene.
func (h *Hierarchy) SeqIDs() []string {
	ids := make([]string, 0, len(h.trees))
	for id := range h.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Orphans returns records excluded from the hierarchy, in line order.
func (h *Hierarchy) Orphans() []*Record {
	return h.orphans
}

// Warnings returns every non-fatal problem found while building, in line
// order.
func (h *Hierarchy) Warnings() []Warning {
	return h.warnings
}

// GeneCount returns the number of genes.
func (h *Hierarchy) GeneCount() int {
	return len(h.genes)
}

// TranscriptCount returns the number of transcripts attached to genes.
func (h *Hierarchy) TranscriptCount() int {
	return len(h.transcripts)
}

// ExonCount returns the number of exon/CDS segments attached to transcripts.
func (h *Hierarchy) ExonCount() int {
	return h.exonCount
}

// ImpliedCount returns the number of GTF genes and transcripts built from
// their children's attributes because the file had no row for them.
func (h *Hierarchy) ImpliedCount() int {
	return h.implied
}
