package review

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// RetireItem permanently deletes the item's review state. Reviewing the item
// again starts it over as a first review.
func (s *Service) RetireItem(ctx context.Context, input RetireItemInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.states.Delete(ctx, userID, input.Ref); err != nil {
		return domain.StoreError("delete review state", err)
	}

	s.log.InfoContext(ctx, "item retired",
		slog.String("user_id", userID.String()),
		slog.String("content", input.Ref.String()),
	)

	return nil
}
