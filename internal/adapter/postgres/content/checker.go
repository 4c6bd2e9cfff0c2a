package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

const (
	maxBatch    = 100
	DefaultWait = 2 * time.Millisecond
)

type idLister interface {
	ExistingIDs(ctx context.Context, t domain.ContentType, ids []uuid.UUID) ([]uuid.UUID, error)
}

// Checker answers content existence questions. Concurrent checks of one
// content type are collected into a single ExistingIDs call. Answers are not
// cached, so content deleted later is reported missing.
type Checker struct {
	loaders map[domain.ContentType]*dataloader.Loader[uuid.UUID, bool]
}

// NewChecker creates a Checker that waits up to wait for more keys before
// querying.
func NewChecker(repo idLister, wait time.Duration) *Checker {
	loaders := make(map[domain.ContentType]*dataloader.Loader[uuid.UUID, bool], len(domain.ContentTypes()))
	for _, t := range domain.ContentTypes() {
		loaders[t] = dataloader.NewBatchedLoader(
			existsBatchFn(repo, t),
			dataloader.WithWait[uuid.UUID, bool](wait),
			dataloader.WithBatchCapacity[uuid.UUID, bool](maxBatch),
			dataloader.WithCache[uuid.UUID, bool](&dataloader.NoCache[uuid.UUID, bool]{}),
		)
	}
	return &Checker{loaders: loaders}
}

// Exists reports whether ref names existing content.
func (c *Checker) Exists(ctx context.Context, ref domain.ContentRef) (bool, error) {
	l, ok := c.loaders[ref.Type]
	if !ok {
		return false, nil
	}
	return l.Load(ctx, ref.ID)()
}

func existsBatchFn(repo idLister, t domain.ContentType) dataloader.BatchFunc[uuid.UUID, bool] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[bool] {
		found, err := repo.ExistingIDs(ctx, t, keys)
		results := make([]*dataloader.Result[bool], len(keys))
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[bool]{Error: err}
			}
			return results
		}

		set := make(map[uuid.UUID]struct{}, len(found))
		for _, id := range found {
			set[id] = struct{}{}
		}
		for i, k := range keys {
			_, ok := set[k]
			results[i] = &dataloader.Result[bool]{Data: ok}
		}
		return results
	}
}
