package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

var contentTables = map[domain.ContentType]string{
	domain.ContentTypeQuestion:      "questions",
	domain.ContentTypeFlashcard:     "flashcards",
	domain.ContentTypeErrorNotebook: "error_notebook_entries",
}

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedContent inserts one content item of type t and returns its reference.
func SeedContent(t *testing.T, pool *pgxpool.Pool, ct domain.ContentType) domain.ContentRef {
	t.Helper()

	ref := domain.ContentRef{Type: ct, ID: uuid.New()}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO `+contentTables[ct]+` (id, title, body) VALUES ($1, $2, $3)`,
		ref.ID, string(ct)+" "+uniqueSuffix(), "body",
	)
	if err != nil {
		t.Fatalf("testhelper: SeedContent %s: %v", ct, err)
	}
	return ref
}

// SeedSequence creates a sequence of n freshly seeded questions and returns
// its id with the items in order.
func SeedSequence(t *testing.T, pool *pgxpool.Pool, n int) (uuid.UUID, []domain.ContentRef) {
	t.Helper()
	ctx := context.Background()

	seqID := uuid.New()
	if _, err := pool.Exec(ctx, `INSERT INTO content_sequences (id, title) VALUES ($1, $2)`,
		seqID, "sequence "+uniqueSuffix()); err != nil {
		t.Fatalf("testhelper: SeedSequence insert sequence: %v", err)
	}

	refs := make([]domain.ContentRef, n)
	for i := range n {
		refs[i] = SeedContent(t, pool, domain.ContentTypeQuestion)
		_, err := pool.Exec(ctx,
			`INSERT INTO content_sequence_items (sequence_id, position, content_type, content_id)
			 VALUES ($1, $2, $3, $4)`,
			seqID, i, string(refs[i].Type), refs[i].ID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedSequence insert item %d: %v", i, err)
		}
	}
	return seqID, refs
}

// NewReviewState returns a valid state for ref that was due at dueAt.
func NewReviewState(userID uuid.UUID, ref domain.ContentRef, dueAt time.Time) domain.ReviewState {
	now := time.Now().UTC().Truncate(time.Microsecond)
	g := domain.ReviewGradeGood
	return domain.ReviewState{
		UserID:                userID,
		Ref:                   ref,
		Stability:             3.1,
		Difficulty:            5.3,
		ScheduledIntervalDays: 3,
		DueAt:                 dueAt.UTC().Truncate(time.Microsecond),
		LastGrade:             &g,
		ConsecutiveGoodOrEasy: 1,
		TotalReviews:          1,
		LastReviewedAt:        now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
