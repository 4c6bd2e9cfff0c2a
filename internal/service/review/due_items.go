package review

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// GetDueItems returns the items due at AsOf, oldest due first, ties broken by content id.
// Types the user disabled are never listed, even when asked for by Type.
func (s *Service) GetDueItems(ctx context.Context, input GetDueItemsInput) ([]domain.ContentRef, error) {
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
	if input.Type != "" {
		if !cfg.IsTypeEnabled(input.Type) {
			return []domain.ContentRef{}, nil
		}
		types = []domain.ContentType{input.Type}
	}

	states, err := s.states.ListDue(ctx, userID, domain.DueFilter{
		Types: types,
		AsOf:  s.asOf(input.AsOf),
		Limit: input.Limit,
	})
	if err != nil {
		return nil, domain.StoreError("list due", err)
	}

	sortByDue(states)

	refs := make([]domain.ContentRef, len(states))
	for i, st := range states {
		refs[i] = st.Ref
	}
	return refs, nil
}

func (s *Service) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t.UTC()
}

// sortByDue orders by due time, then content id, then content type.
func sortByDue(states []*domain.ReviewState) {
	sort.SliceStable(states, func(i, j int) bool {
		return dueLess(states[i], states[j])
	})
}

func dueLess(a, b *domain.ReviewState) bool {
	if !a.DueAt.Equal(b.DueAt) {
		return a.DueAt.Before(b.DueAt)
	}
	if c := bytes.Compare(a.Ref.ID[:], b.Ref.ID[:]); c != 0 {
		return c < 0
	}
	return a.Ref.Type < b.Ref.Type
}
