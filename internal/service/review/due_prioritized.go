package review

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// Priority weights.
const (
	overdueWeight      = 10
	lapseWeight        = 5
	fragilityWeight    = 3
	fragilityCeiling   = 10.0
	errorNotebookBoost = 20
)

// GetDuePrioritized returns due items of enabled types, highest PriorityScore first.
func (s *Service) GetDuePrioritized(ctx context.Context, input DueListInput) ([]PrioritizedItem, error) {
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

	asOf := s.asOf(input.AsOf)
	states, err := s.states.ListDue(ctx, userID, domain.DueFilter{
		Types: cfg.EnabledTypes(),
		AsOf:  asOf,
	})
	if err != nil {
		return nil, domain.StoreError("list due", err)
	}

	type scored struct {
		state *domain.ReviewState
		score float64
	}
	items := make([]scored, len(states))
	for i, st := range states {
		items[i] = scored{state: st, score: PriorityScore(st, asOf)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return dueLess(items[i].state, items[j].state)
	})

	if len(items) > input.Limit {
		items = items[:input.Limit]
	}

	out := make([]PrioritizedItem, len(items))
	for i, it := range items {
		out[i] = PrioritizedItem{
			Ref:         it.state.Ref,
			DueAt:       it.state.DueAt,
			OverdueDays: it.state.OverdueDays(asOf),
			Score:       it.score,
		}
	}
	return out, nil
}

// PriorityScore rates how urgently a due item needs review.
func PriorityScore(st *domain.ReviewState, asOf time.Time) float64 {
	score := float64(st.OverdueDays(asOf)*overdueWeight + st.Lapses*lapseWeight)
	score += (fragilityCeiling - math.Min(st.Stability, fragilityCeiling)) * fragilityWeight
	if st.Ref.Type == domain.ContentTypeErrorNotebook {
		score += errorNotebookBoost
	}
	return score
}
