// Package progress keeps study session progress in Redis so that a session
// can resume on any instance after its in-memory window is gone.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// record is the stored JSON form of a progress entry.
type record struct {
	SessionID    uuid.UUID   `json:"session_id"`
	UserID       uuid.UUID   `json:"user_id"`
	SequenceID   uuid.UUID   `json:"sequence_id"`
	CurrentIndex int         `json:"current_index"`
	Answered     []uuid.UUID `json:"answered,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Store is a Redis-backed session progress store. Every save refreshes the
// entry's TTL.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a store writing keys "<prefix>session:<id>" that expire ttl
// after their last save.
func New(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(sessionID uuid.UUID) string {
	return s.prefix + "session:" + sessionID.String()
}

// Save writes p.
func (s *Store) Save(ctx context.Context, p *domain.SessionProgress) error {
	raw, err := json.Marshal(record{
		SessionID:    p.SessionID,
		UserID:       p.UserID,
		SequenceID:   p.SequenceID,
		CurrentIndex: p.CurrentIndex,
		Answered:     p.Answered,
		UpdatedAt:    p.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode session progress: %w", err)
	}

	if err := s.rdb.Set(ctx, s.key(p.SessionID), raw, s.ttl).Err(); err != nil {
		return unavailable("save", p.SessionID, err)
	}
	return nil
}

// Load returns the progress of sessionID, or domain.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID uuid.UUID) (*domain.SessionProgress, error) {
	raw, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session progress %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("load", sessionID, err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session progress %s: %w", sessionID, err)
	}
	return &domain.SessionProgress{
		SessionID:    rec.SessionID,
		UserID:       rec.UserID,
		SequenceID:   rec.SequenceID,
		CurrentIndex: rec.CurrentIndex,
		Answered:     rec.Answered,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

// Delete removes the progress of sessionID. Returns domain.ErrNotFound when absent.
func (s *Store) Delete(ctx context.Context, sessionID uuid.UUID) error {
	n, err := s.rdb.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return unavailable("delete", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("session progress %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}

func unavailable(op string, sessionID uuid.UUID, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s session progress %s: %w", op, sessionID, err)
	}
	return fmt.Errorf("%s session progress %s: %w: %w", op, sessionID, domain.ErrStateStoreUnavailable, err)
}
