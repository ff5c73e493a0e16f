package captchaly

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of solves SolveAll runs at once when no limit is given
const DefaultConcurrency = 10

// BatchItem is one task to solve in a batch
type BatchItem struct {
	// ID correlates the result and log lines; generated when empty
	ID   string
	Kind Kind
	Task Task
}

// BatchResult is the outcome of one BatchItem
type BatchResult struct {
	ID       string
	Kind     Kind
	Token    string
	Err      error
	Duration time.Duration
}

// Text renders the result the way Text does for a single solve
func (r BatchResult) Text() string {
	return Text(r.Token, r.Err)
}

// SolveAll solves independent tasks concurrently, at most limit at a time.
// Results keep the order of items. A failed item never cancels the others; only
// cancelling ctx does.
func (s *Solver) SolveAll(ctx context.Context, items []BatchItem, limit int) []BatchResult {
	results := make([]BatchResult, len(items))
	if len(items) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}

		g.Go(func() error {
			start := time.Now()
			token, err := s.Solve(ctx, item.Kind, item.Task)

			// Each goroutine owns its slot, no locking needed
			results[i] = BatchResult{
				ID:       item.ID,
				Kind:     item.Kind,
				Token:    token,
				Err:      err,
				Duration: time.Since(start),
			}

			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("id", item.ID).
					Str("kind", string(item.Kind)).
					Msg("Batch task failed")
			} else {
				s.logger.Debug().
					Str("id", item.ID).
					Dur("took", results[i].Duration).
					Msg("Batch task solved")
			}
			return nil // Don't stop on individual errors
		})
	}

	g.Wait()
	return results
}
