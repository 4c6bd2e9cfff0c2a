// Package session streams long ordered content sequences to a study session
// through a small window of cached batches.
package session

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// ErrWindowClosed is returned by a window whose session has ended or was
// evicted mid-call. Retrying the operation reopens the session from its saved
// progress.
var ErrWindowClosed = fmt.Errorf("session window closed: %w", domain.ErrConflict)

type batchSource interface {
	FetchBatch(ctx context.Context, sequenceID uuid.UUID, offset, limit int) (domain.Batch, error)
}

// Phase is the window's loading phase.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "EMPTY"
	case PhaseLoading:
		return "LOADING"
	case PhaseReady:
		return "READY"
	default:
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// State is the tagged window state. Batch is set only in PhaseLoading.
type State struct {
	Phase Phase
	Batch int
}

// WindowConfig sizes a window.
type WindowConfig struct {
	BatchSize        int
	MaxCachedBatches int
	// PrefetchNext loads the following batch in the background once the
	// cursor reaches the second half of its batch.
	PrefetchNext    bool
	PrefetchTimeout time.Duration
}

// DefaultWindowConfig returns batches of 20 with at most 3 cached.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		BatchSize:        20,
		MaxCachedBatches: 3,
		PrefetchNext:     true,
		PrefetchTimeout:  10 * time.Second,
	}
}

// Window is the batch cache of one session over one sequence.
//
// Fetches run without holding the window lock, so already loaded items stay
// readable while a batch is in flight. At most one fetch per batch index is
// in flight at a time.
type Window struct {
	source     batchSource
	sequenceID uuid.UUID
	cfg        WindowConfig

	mu     sync.Mutex
	state  State
	cursor int
	// total is -1 until the first batch arrives.
	total  int
	items  map[int]domain.ContentItem
	loaded map[int]struct{}
	closed bool

	pending singleflight.Group
	bg      sync.WaitGroup
}

// NewWindow creates an empty window over sequenceID.
func NewWindow(source batchSource, sequenceID uuid.UUID, cfg WindowConfig) *Window {
	def := DefaultWindowConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxCachedBatches < 1 {
		cfg.MaxCachedBatches = def.MaxCachedBatches
	}
	if cfg.PrefetchTimeout <= 0 {
		cfg.PrefetchTimeout = def.PrefetchTimeout
	}

	return &Window{
		source:     source,
		sequenceID: sequenceID,
		cfg:        cfg,
		total:      -1,
		items:      make(map[int]domain.ContentItem),
		loaded:     make(map[int]struct{}),
	}
}

// Advance moves the cursor to index and returns the item there, fetching its
// batch first when it is not cached. On a failed fetch the window stays in
// Loading and nothing is merged; calling Advance again retries.
func (w *Window) Advance(ctx context.Context, index int) (domain.ContentItem, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ContentItem{}, ErrWindowClosed
	}
	if err := w.checkIndex(index); err != nil {
		w.mu.Unlock()
		return domain.ContentItem{}, err
	}

	b := w.batchOf(index)
	w.cursor = index
	if _, ok := w.loaded[b]; !ok {
		w.state = State{Phase: PhaseLoading, Batch: b}
		w.mu.Unlock()

		if err := w.load(ctx, b); err != nil {
			return domain.ContentItem{}, err
		}

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return domain.ContentItem{}, ErrWindowClosed
		}
		// The total is known only now.
		if err := w.checkIndex(index); err != nil {
			w.state = State{Phase: PhaseReady}
			w.mu.Unlock()
			return domain.ContentItem{}, err
		}
	}

	w.state = State{Phase: PhaseReady}
	item, ok := w.items[index]
	next := w.prefetchCandidate()
	w.mu.Unlock()

	if !ok {
		return domain.ContentItem{}, fmt.Errorf("item %d: %w", index, domain.ErrNotFound)
	}
	if next >= 0 {
		w.prefetch(next)
	}
	return item, nil
}

// load fetches batch b, joining a fetch already in flight for b.
func (w *Window) load(ctx context.Context, b int) error {
	_, err, _ := w.pending.Do(strconv.Itoa(b), func() (any, error) {
		batch, err := w.source.FetchBatch(ctx, w.sequenceID, b*w.cfg.BatchSize, w.cfg.BatchSize)
		if err != nil {
			return nil, err
		}
		w.merge(b, batch)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: batch %d: %w", domain.ErrBatchFetchFailed, b, err)
	}
	return nil
}

// merge stores a fetched batch and evicts down to MaxCachedBatches.
// Results arriving after Close are dropped.
func (w *Window) merge(b int, batch domain.Batch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.total = batch.Total
	if _, ok := w.loaded[b]; ok {
		return
	}

	offset := b * w.cfg.BatchSize
	for i, item := range batch.Items {
		if i >= w.cfg.BatchSize {
			break
		}
		item.Position = offset + i
		w.items[item.Position] = item
	}
	w.loaded[b] = struct{}{}

	for len(w.loaded) > w.cfg.MaxCachedBatches {
		w.evict(w.victim())
	}
}

// focus is the batch eviction distances are measured from: the batch being
// loaded, else the cursor's batch.
func (w *Window) focus() int {
	if w.state.Phase == PhaseLoading {
		return w.state.Batch
	}
	return w.batchOf(w.cursor)
}

// victim picks the loaded batch farthest from the focus; equal distances
// evict the lower index.
func (w *Window) victim() int {
	focus := w.focus()
	victim, best := -1, -1
	for b := range w.loaded {
		d := abs(b - focus)
		if d > best || (d == best && b < victim) {
			victim, best = b, d
		}
	}
	return victim
}

func (w *Window) evict(b int) {
	offset := b * w.cfg.BatchSize
	for i := offset; i < offset+w.cfg.BatchSize; i++ {
		delete(w.items, i)
	}
	delete(w.loaded, b)
}

// prefetchCandidate returns the batch after the cursor's batch when the
// cursor sits in the second half of its batch and that batch is neither
// cached nor past the end, else -1. Caller holds mu.
func (w *Window) prefetchCandidate() int {
	if !w.cfg.PrefetchNext || w.total < 0 {
		return -1
	}
	if w.cursor%w.cfg.BatchSize < w.cfg.BatchSize/2 {
		return -1
	}
	next := w.batchOf(w.cursor) + 1
	if next*w.cfg.BatchSize >= w.total {
		return -1
	}
	if _, ok := w.loaded[next]; ok {
		return -1
	}
	return next
}

func (w *Window) prefetch(b int) {
	w.bg.Add(1)
	go func() {
		defer w.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.PrefetchTimeout)
		defer cancel()
		// A failed prefetch is retried by the Advance that needs the batch.
		_ = w.load(ctx, b)
	}()
}

// Wait blocks until background prefetches finish.
func (w *Window) Wait() {
	w.bg.Wait()
}

// Close ends the window. In-flight fetches complete but their results are discarded.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.items = make(map[int]domain.ContentItem)
	w.loaded = make(map[int]struct{})
}

// Closed reports whether Close was called.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Item returns a cached item without fetching.
func (w *Window) Item(index int) (domain.ContentItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	item, ok := w.items[index]
	return item, ok
}

// Snapshot is a point-in-time view of the window.
type Snapshot struct {
	State         State
	Cursor        int
	Total         int
	LoadedBatches []int
}

// Snapshot returns the current window state. LoadedBatches is sorted.
func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	loaded := make([]int, 0, len(w.loaded))
	for b := range w.loaded {
		loaded = append(loaded, b)
	}
	slices.Sort(loaded)

	return Snapshot{
		State:         w.state,
		Cursor:        w.cursor,
		Total:         w.total,
		LoadedBatches: loaded,
	}
}

func (w *Window) checkIndex(index int) error {
	if index < 0 || (w.total >= 0 && index >= w.total) {
		return domain.NewValidationError("index", "out of range")
	}
	return nil
}

func (w *Window) batchOf(index int) int {
	return index / w.cfg.BatchSize
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
