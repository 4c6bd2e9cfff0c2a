package review

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// typeShares lists the share of the limit per number of enabled types.
// Shares follow domain.ContentTypes order (QUESTION, FLASHCARD, ERROR_NOTEBOOK).
var typeShares = map[int][]float64{
	1: {1.0},
	2: {0.6, 0.4},
	3: {0.4, 0.3, 0.3},
}

// GetDueBalanced returns up to Limit due items mixed across enabled content
// types. A type with fewer due items than its share leaves room that the
// other types fill.
func (s *Service) GetDueBalanced(ctx context.Context, input DueListInput) ([]domain.ContentRef, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.studyMode(ctx, userID)
	if err != nil {
		return nil, err
	}

	types := cfg.EnabledTypes()
	if len(types) == 0 {
		return nil, nil
	}
	asOf := s.asOf(input.AsOf)

	// Each type is loaded up to the full limit so that it can backfill.
	perType := make([][]*domain.ReviewState, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			states, listErr := s.states.ListDue(gctx, userID, domain.DueFilter{
				Types: []domain.ContentType{t},
				AsOf:  asOf,
				Limit: input.Limit,
			})
			if listErr != nil {
				return domain.StoreError("list due "+string(t), listErr)
			}
			sortByDue(states)
			perType[i] = states
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	taken := allocate(quotas(input.Limit, len(types)), perType, input.Limit)
	return interleave(perType, taken), nil
}

// quotas splits limit by the shares for n types. Rounding leftovers go to
// the first types.
func quotas(limit, n int) []int {
	shares, ok := typeShares[n]
	if !ok {
		return nil
	}
	out := make([]int, n)
	sum := 0
	for i, sh := range shares {
		out[i] = int(float64(limit) * sh)
		sum += out[i]
	}
	for i := 0; sum < limit; i = (i + 1) % n {
		out[i]++
		sum++
	}
	return out
}

// allocate returns how many items to take per type: each type up to its
// quota, then unused capacity backfilled in type order.
func allocate(quota []int, perType [][]*domain.ReviewState, limit int) []int {
	taken := make([]int, len(perType))
	total := 0
	for i := range perType {
		taken[i] = min(quota[i], len(perType[i]))
		total += taken[i]
	}
	for i := range perType {
		if total >= limit {
			break
		}
		extra := min(len(perType[i])-taken[i], limit-total)
		taken[i] += extra
		total += extra
	}
	return taken
}

// interleave merges the first taken[i] items of each type round-robin.
func interleave(perType [][]*domain.ReviewState, taken []int) []domain.ContentRef {
	total := 0
	for _, n := range taken {
		total += n
	}
	out := make([]domain.ContentRef, 0, total)
	for round := 0; len(out) < total; round++ {
		for i := range perType {
			if round < taken[i] {
				out = append(out, perType[i][round].Ref)
			}
		}
	}
	return out
}
