// Package memory holds in-process adapters for single-node deployments.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// ProgressStore keeps session progress in a bounded TTL cache. Progress is
// lost on restart.
type ProgressStore struct {
	cache *expirable.LRU[uuid.UUID, domain.SessionProgress]
}

// NewProgressStore creates a store holding up to size entries for ttl each.
func NewProgressStore(size int, ttl time.Duration) *ProgressStore {
	return &ProgressStore{cache: expirable.NewLRU[uuid.UUID, domain.SessionProgress](size, nil, ttl)}
}

func (s *ProgressStore) Save(_ context.Context, p *domain.SessionProgress) error {
	cp := *p
	cp.Answered = append([]uuid.UUID(nil), p.Answered...)
	s.cache.Add(p.SessionID, cp)
	return nil
}

func (s *ProgressStore) Load(_ context.Context, sessionID uuid.UUID) (*domain.SessionProgress, error) {
	p, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session progress %s: %w", sessionID, domain.ErrNotFound)
	}
	p.Answered = append([]uuid.UUID(nil), p.Answered...)
	return &p, nil
}

func (s *ProgressStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	if !s.cache.Remove(sessionID) {
		return fmt.Errorf("session progress %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}
