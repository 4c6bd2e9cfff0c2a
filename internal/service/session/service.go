package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

type progressStore interface {
	Save(ctx context.Context, p *domain.SessionProgress) error
	Load(ctx context.Context, sessionID uuid.UUID) (*domain.SessionProgress, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds session manager settings.
type Config struct {
	Window WindowConfig
	// SessionTTL is how long a window stays in memory without being used.
	// Every operation on the session restarts it. Progress outlives it in the
	// progress store.
	SessionTTL  time.Duration
	MaxSessions int
}

// liveSession is a window with the progress it serves. mu serializes
// operations on one session.
type liveSession struct {
	mu       sync.Mutex
	window   *Window
	progress domain.SessionProgress
}

// Service manages study sessions over content sequences.
type Service struct {
	source   batchSource
	progress progressStore
	clock    clock
	log      *slog.Logger
	cfg      Config

	// mu guards rebuilding a session that is not live.
	mu   sync.Mutex
	live *expirable.LRU[uuid.UUID, *liveSession]
}

// NewService creates a new session service.
func NewService(log *slog.Logger, source batchSource, progress progressStore, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = 10000
	}

	onEvict := func(_ uuid.UUID, ls *liveSession) {
		ls.window.Close()
	}

	return &Service{
		source:   source,
		progress: progress,
		clock:    systemClock{},
		log:      log.With("service", "session"),
		cfg:      cfg,
		live:     expirable.NewLRU[uuid.UUID, *liveSession](cfg.MaxSessions, onEvict, cfg.SessionTTL),
	}
}

// Start opens a new session over a sequence, or resumes input.SessionID at
// its saved position.
func (s *Service) Start(ctx context.Context, input StartInput) (*View, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.SessionID != nil {
		ls, err := s.session(ctx, userID, *input.SessionID)
		if err != nil {
			return nil, err
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()
		return s.open(ctx, ls)
	}

	ls := &liveSession{
		window: NewWindow(s.source, input.SequenceID, s.cfg.Window),
		progress: domain.SessionProgress{
			SessionID:  uuid.New(),
			UserID:     userID,
			SequenceID: input.SequenceID,
			UpdatedAt:  s.clock.Now(),
		},
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	view, err := s.open(ctx, ls)
	if err != nil {
		ls.window.Close()
		return nil, err
	}

	if err := s.progress.Save(ctx, &ls.progress); err != nil {
		ls.window.Close()
		return nil, domain.StoreError("save session progress", err)
	}
	s.live.Add(ls.progress.SessionID, ls)

	s.log.InfoContext(ctx, "session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", ls.progress.SessionID.String()),
		slog.String("sequence_id", input.SequenceID.String()),
		slog.Int("total", view.Total),
	)

	return view, nil
}

// open loads the item at the saved cursor. An empty sequence yields a view
// without an item. Caller holds ls.mu.
func (s *Service) open(ctx context.Context, ls *liveSession) (*View, error) {
	item, err := ls.window.Advance(ctx, ls.progress.CurrentIndex)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) && ls.window.Snapshot().Total == 0 {
			return s.view(ls, nil), nil
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s.view(ls, &item), nil
}

// Advance moves the session cursor to input.ToIndex. When the batch cannot
// be fetched the session stays Loading at the old saved position; retrying
// the call retries the fetch.
func (s *Service) Advance(ctx context.Context, input AdvanceInput) (*View, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ls, err := s.session(ctx, userID, input.SessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	item, err := ls.window.Advance(ctx, input.ToIndex)
	if err != nil {
		return nil, fmt.Errorf("advance session: %w", err)
	}

	ls.progress.CurrentIndex = input.ToIndex
	ls.progress.UpdatedAt = s.clock.Now()
	if err := s.progress.Save(ctx, &ls.progress); err != nil {
		return nil, domain.StoreError("save session progress", err)
	}

	return s.view(ls, &item), nil
}

// Answer marks contentID answered in the session. Answering twice is a no-op.
func (s *Service) Answer(ctx context.Context, input AnswerInput) (*domain.SessionProgress, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ls, err := s.session(ctx, userID, input.SessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.progress.HasAnswered(input.ContentID) {
		ls.progress.Answered = append(ls.progress.Answered, input.ContentID)
		ls.progress.UpdatedAt = s.clock.Now()
		if err := s.progress.Save(ctx, &ls.progress); err != nil {
			return nil, domain.StoreError("save session progress", err)
		}
	}

	p := ls.progress
	p.Answered = append([]uuid.UUID(nil), ls.progress.Answered...)
	return &p, nil
}

// End closes the session and forgets its progress.
func (s *Service) End(ctx context.Context, sessionID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if _, err := s.session(ctx, userID, sessionID); err != nil {
		return err
	}

	s.live.Remove(sessionID)
	if err := s.progress.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.StoreError("delete session progress", err)
	}

	s.log.InfoContext(ctx, "session ended",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
	)
	return nil
}

// session returns the live session of userID, rebuilding its window from
// saved progress when it was evicted. Sessions of other users are reported
// as not found.
func (s *Service) session(ctx context.Context, userID, sessionID uuid.UUID) (*liveSession, error) {
	if ls, ok := s.touch(sessionID); ok {
		return owned(ls, userID, sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.touch(sessionID); ok {
		return owned(ls, userID, sessionID)
	}

	p, err := s.progress.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.StoreError("load session progress", err)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}

	ls := &liveSession{
		window:   NewWindow(s.source, p.SequenceID, s.cfg.Window),
		progress: *p,
	}
	s.live.Add(sessionID, ls)

	s.log.DebugContext(ctx, "session restored",
		slog.String("session_id", sessionID.String()),
		slog.Int("index", p.CurrentIndex),
	)
	return ls, nil
}

// touch returns the live session and restarts its idle timer. A session
// whose window was closed by eviction counts as absent; the rebuilt session
// replaces it.
func (s *Service) touch(sessionID uuid.UUID) (*liveSession, bool) {
	ls, ok := s.live.Get(sessionID)
	if !ok || ls.window.Closed() {
		return nil, false
	}
	s.live.Add(sessionID, ls)
	return ls, true
}

func owned(ls *liveSession, userID, sessionID uuid.UUID) (*liveSession, error) {
	if ls.progress.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return ls, nil
}

// Caller holds ls.mu.
func (s *Service) view(ls *liveSession, item *domain.ContentItem) *View {
	snap := ls.window.Snapshot()
	v := &View{
		SessionID:     ls.progress.SessionID,
		SequenceID:    ls.progress.SequenceID,
		Index:         ls.progress.CurrentIndex,
		Total:         snap.Total,
		Item:          item,
		AnsweredCount: len(ls.progress.Answered),
		State:         snap.State,
		LoadedBatches: snap.LoadedBatches,
	}
	if item != nil {
		v.Index = item.Position
		v.Answered = ls.progress.HasAnswered(item.Ref.ID)
	}
	return v
}

// View is what a client sees of a session after an operation.
type View struct {
	SessionID     uuid.UUID
	SequenceID    uuid.UUID
	Index         int
	Total         int
	Item          *domain.ContentItem
	Answered      bool
	AnsweredCount int
	State         State
	LoadedBatches []int
}

// StartInput starts a session over SequenceID, or resumes SessionID.
type StartInput struct {
	SequenceID uuid.UUID
	SessionID  *uuid.UUID
}

func (i *StartInput) Validate() error {
	if i.SessionID == nil && i.SequenceID == uuid.Nil {
		return domain.NewValidationError("sequence_id", "required")
	}
	if i.SessionID != nil && *i.SessionID == uuid.Nil {
		return domain.NewValidationError("session_id", "must not be nil")
	}
	return nil
}

type AdvanceInput struct {
	SessionID uuid.UUID
	ToIndex   int
}

func (i *AdvanceInput) Validate() error {
	var errs []domain.FieldError
	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.ToIndex < 0 {
		errs = append(errs, domain.FieldError{Field: "to_index", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

type AnswerInput struct {
	SessionID uuid.UUID
	ContentID uuid.UUID
}

func (i *AnswerInput) Validate() error {
	var errs []domain.FieldError
	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.ContentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "content_id", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
