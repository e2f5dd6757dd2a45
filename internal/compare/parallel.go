package compare

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// WorkItem holds one gene match ready for detailed comparison.
type WorkItem struct {
	Seq   int
	Match GeneMatch
}

// WorkResult holds the comparison output for a single gene match.
type WorkResult struct {
	Seq        int
	Match      GeneMatch
	Comparison *GeneComparison
	Err        error
}

// Comparer runs detailed gene comparisons. Hierarchies are read-only after
// construction, so workers share them without locking.
type Comparer struct {
	opts   Options
	logger *zap.Logger
}

// NewComparer creates a comparer with the given options.
func NewComparer(opts Options) *Comparer {
	return &Comparer{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (c *Comparer) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Options returns the comparer's options.
func (c *Comparer) Options() Options {
	return c.opts
}

// Compare runs CompareGenes for a single accepted gene match.
func (c *Comparer) Compare(m GeneMatch) (*GeneComparison, error) {
	if !m.Matched || m.Ref == nil || m.Pred == nil {
		return nil, fmt.Errorf("gene %s has no accepted predicted match", m.RefGeneID)
	}
	return CompareGenes(m.Ref, m.Pred, c.opts), nil
}

// ParallelCompare compares work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Comparer) ParallelCompare(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				gc, err := c.Compare(item.Match)
				results <- WorkResult{
					Seq:        item.Seq,
					Match:      item.Match,
					Comparison: gc,
					Err:        err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// CompareAll compares every accepted match and calls fn with the results in
// match order. Unmatched reference genes are skipped.
func (c *Comparer) CompareAll(matches []GeneMatch, workers int, fn func(*GeneComparison) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make(chan WorkItem, 2*workers)

	go func() {
		defer close(items)
		seq := 0
		for _, m := range matches {
			if !m.Matched {
				c.logger.Debug("skipping unmatched reference gene",
					zap.String("gene", m.RefGeneID),
					zap.String("candidate", m.Candidate),
					zap.Float64("ratio", m.Ratio))
				continue
			}
			items <- WorkItem{Seq: seq, Match: m}
			seq++
		}
	}()

	compared := 0
	err := OrderedCollect(c.ParallelCompare(items, workers), func(r WorkResult) error {
		if r.Err != nil {
			c.logger.Warn("failed to compare gene",
				zap.String("ref_gene", r.Match.RefGeneID),
				zap.String("pred_gene", r.Match.PredGeneID),
				zap.Error(r.Err))
			return nil
		}
		compared++
		return fn(r.Comparison)
	})
	if err != nil {
		return err
	}

	c.logger.Info("compared genes", zap.Int("pairs", compared))
	return nil
}
