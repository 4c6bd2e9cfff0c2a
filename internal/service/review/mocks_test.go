package review

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// ---------------------------------------------------------------------------
// stateStoreMock
// ---------------------------------------------------------------------------

var _ stateStore = &stateStoreMock{}

type stateStoreMock struct {
	GetFunc          func(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error)
	GetForUpdateFunc func(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error)
	PutFunc          func(ctx context.Context, state *domain.ReviewState) error
	DeleteFunc       func(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) error
	ListDueFunc      func(ctx context.Context, userID uuid.UUID, filter domain.DueFilter) ([]*domain.ReviewState, error)

	calls struct {
		Get          []refCall
		GetForUpdate []refCall
		Put          []struct{ State *domain.ReviewState }
		Delete       []refCall
		ListDue      []struct {
			UserID uuid.UUID
			Filter domain.DueFilter
		}
	}
	lockGet          sync.RWMutex
	lockGetForUpdate sync.RWMutex
	lockPut          sync.RWMutex
	lockDelete       sync.RWMutex
	lockListDue      sync.RWMutex
}

type refCall struct {
	UserID uuid.UUID
	Ref    domain.ContentRef
}

func (mock *stateStoreMock) Get(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error) {
	if mock.GetFunc == nil {
		panic("stateStoreMock.GetFunc: method is nil but stateStore.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, refCall{UserID: userID, Ref: ref})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, userID, ref)
}

func (mock *stateStoreMock) GetCalls() []refCall {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

func (mock *stateStoreMock) GetForUpdate(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error) {
	if mock.GetForUpdateFunc == nil {
		panic("stateStoreMock.GetForUpdateFunc: method is nil but stateStore.GetForUpdate was just called")
	}
	mock.lockGetForUpdate.Lock()
	mock.calls.GetForUpdate = append(mock.calls.GetForUpdate, refCall{UserID: userID, Ref: ref})
	mock.lockGetForUpdate.Unlock()
	return mock.GetForUpdateFunc(ctx, userID, ref)
}

func (mock *stateStoreMock) GetForUpdateCalls() []refCall {
	mock.lockGetForUpdate.RLock()
	defer mock.lockGetForUpdate.RUnlock()
	return mock.calls.GetForUpdate
}

func (mock *stateStoreMock) Put(ctx context.Context, state *domain.ReviewState) error {
	if mock.PutFunc == nil {
		panic("stateStoreMock.PutFunc: method is nil but stateStore.Put was just called")
	}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, struct{ State *domain.ReviewState }{State: state})
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, state)
}

func (mock *stateStoreMock) PutCalls() []struct{ State *domain.ReviewState } {
	mock.lockPut.RLock()
	defer mock.lockPut.RUnlock()
	return mock.calls.Put
}

func (mock *stateStoreMock) Delete(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) error {
	if mock.DeleteFunc == nil {
		panic("stateStoreMock.DeleteFunc: method is nil but stateStore.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, refCall{UserID: userID, Ref: ref})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, userID, ref)
}

func (mock *stateStoreMock) DeleteCalls() []refCall {
	mock.lockDelete.RLock()
	defer mock.lockDelete.RUnlock()
	return mock.calls.Delete
}

func (mock *stateStoreMock) ListDue(ctx context.Context, userID uuid.UUID, filter domain.DueFilter) ([]*domain.ReviewState, error) {
	if mock.ListDueFunc == nil {
		panic("stateStoreMock.ListDueFunc: method is nil but stateStore.ListDue was just called")
	}
	mock.lockListDue.Lock()
	mock.calls.ListDue = append(mock.calls.ListDue, struct {
		UserID uuid.UUID
		Filter domain.DueFilter
	}{UserID: userID, Filter: filter})
	mock.lockListDue.Unlock()
	return mock.ListDueFunc(ctx, userID, filter)
}

func (mock *stateStoreMock) ListDueCalls() []struct {
	UserID uuid.UUID
	Filter domain.DueFilter
} {
	mock.lockListDue.RLock()
	defer mock.lockListDue.RUnlock()
	return mock.calls.ListDue
}

// ---------------------------------------------------------------------------
// eventLogMock
// ---------------------------------------------------------------------------

var _ eventLog = &eventLogMock{}

type eventLogMock struct {
	AppendFunc     func(ctx context.Context, event *domain.ReviewEvent) error
	ListRecentFunc func(ctx context.Context, userID uuid.UUID, ref domain.ContentRef, limit int) ([]*domain.ReviewEvent, error)

	calls struct {
		Append     []struct{ Event *domain.ReviewEvent }
		ListRecent []struct {
			UserID uuid.UUID
			Ref    domain.ContentRef
			Limit  int
		}
	}
	lockAppend     sync.RWMutex
	lockListRecent sync.RWMutex
}

func (mock *eventLogMock) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if mock.AppendFunc == nil {
		panic("eventLogMock.AppendFunc: method is nil but eventLog.Append was just called")
	}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, struct{ Event *domain.ReviewEvent }{Event: event})
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, event)
}

func (mock *eventLogMock) AppendCalls() []struct{ Event *domain.ReviewEvent } {
	mock.lockAppend.RLock()
	defer mock.lockAppend.RUnlock()
	return mock.calls.Append
}

func (mock *eventLogMock) ListRecent(ctx context.Context, userID uuid.UUID, ref domain.ContentRef, limit int) ([]*domain.ReviewEvent, error) {
	if mock.ListRecentFunc == nil {
		panic("eventLogMock.ListRecentFunc: method is nil but eventLog.ListRecent was just called")
	}
	mock.lockListRecent.Lock()
	mock.calls.ListRecent = append(mock.calls.ListRecent, struct {
		UserID uuid.UUID
		Ref    domain.ContentRef
		Limit  int
	}{UserID: userID, Ref: ref, Limit: limit})
	mock.lockListRecent.Unlock()
	return mock.ListRecentFunc(ctx, userID, ref, limit)
}

func (mock *eventLogMock) ListRecentCalls() []struct {
	UserID uuid.UUID
	Ref    domain.ContentRef
	Limit  int
} {
	mock.lockListRecent.RLock()
	defer mock.lockListRecent.RUnlock()
	return mock.calls.ListRecent
}

// ---------------------------------------------------------------------------
// contentCheckerMock
// ---------------------------------------------------------------------------

var _ contentChecker = &contentCheckerMock{}

type contentCheckerMock struct {
	ExistsFunc func(ctx context.Context, ref domain.ContentRef) (bool, error)
}

func (mock *contentCheckerMock) Exists(ctx context.Context, ref domain.ContentRef) (bool, error) {
	if mock.ExistsFunc == nil {
		panic("contentCheckerMock.ExistsFunc: method is nil but contentChecker.Exists was just called")
	}
	return mock.ExistsFunc(ctx, ref)
}

// ---------------------------------------------------------------------------
// modeProviderMock
// ---------------------------------------------------------------------------

var _ modeProvider = &modeProviderMock{}

type modeProviderMock struct {
	GetFunc func(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error)
}

func (mock *modeProviderMock) Get(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error) {
	if mock.GetFunc == nil {
		panic("modeProviderMock.GetFunc: method is nil but modeProvider.Get was just called")
	}
	return mock.GetFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// txManagerMock
// ---------------------------------------------------------------------------

var _ txManager = &txManagerMock{}

// txManagerMock runs fn inline; a mutex stands in for the row lock.
type txManagerMock struct {
	mu sync.Mutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return fn(ctx)
}
