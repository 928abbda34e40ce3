package dispatcher

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/contentpipe/backend/internal/domain"
)

var _ postRepo = &postRepoMock{}

type postRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	PublishFunc func(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	calls struct {
		GetByID []struct {
			ID uuid.UUID
		}
		Publish []struct {
			ID uuid.UUID
		}
	}
	lockGetByID sync.RWMutex
	lockPublish sync.RWMutex
}

func (mock *postRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if mock.GetByIDFunc == nil {
		panic("postRepoMock.GetByIDFunc: method is nil but postRepo.GetByID was just called")
	}
	callInfo := struct {
		ID uuid.UUID
	}{ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *postRepoMock) GetByIDCalls() []struct {
	ID uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *postRepoMock) Publish(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if mock.PublishFunc == nil {
		panic("postRepoMock.PublishFunc: method is nil but postRepo.Publish was just called")
	}
	callInfo := struct {
		ID uuid.UUID
	}{ID: id}
	mock.lockPublish.Lock()
	mock.calls.Publish = append(mock.calls.Publish, callInfo)
	mock.lockPublish.Unlock()
	return mock.PublishFunc(ctx, id)
}

func (mock *postRepoMock) PublishCalls() []struct {
	ID uuid.UUID
} {
	mock.lockPublish.RLock()
	calls := mock.calls.Publish
	mock.lockPublish.RUnlock()
	return calls
}
