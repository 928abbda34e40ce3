package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contentpipe/backend/internal/domain"
)

var _ scheduleRepo = &scheduleRepoMock{}

type scheduleRepoMock struct {
	FindDueFunc       func(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledPost, error)
	MarkSentFunc      func(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error)
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID, reason string) (*domain.ScheduledPost, error)
	CountByStatusFunc func(ctx context.Context) (map[domain.ScheduleStatus]int, error)

	calls struct {
		FindDue []struct {
			Now   time.Time
			Limit int
		}
		MarkSent []struct {
			ID uuid.UUID
		}
		MarkFailed []struct {
			ID     uuid.UUID
			Reason string
		}
		CountByStatus []struct{}
	}
	lockFindDue       sync.RWMutex
	lockMarkSent      sync.RWMutex
	lockMarkFailed    sync.RWMutex
	lockCountByStatus sync.RWMutex
}

func (mock *scheduleRepoMock) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledPost, error) {
	if mock.FindDueFunc == nil {
		panic("scheduleRepoMock.FindDueFunc: method is nil but scheduleRepo.FindDue was just called")
	}
	callInfo := struct {
		Now   time.Time
		Limit int
	}{Now: now, Limit: limit}
	mock.lockFindDue.Lock()
	mock.calls.FindDue = append(mock.calls.FindDue, callInfo)
	mock.lockFindDue.Unlock()
	return mock.FindDueFunc(ctx, now, limit)
}

func (mock *scheduleRepoMock) FindDueCalls() []struct {
	Now   time.Time
	Limit int
} {
	mock.lockFindDue.RLock()
	calls := mock.calls.FindDue
	mock.lockFindDue.RUnlock()
	return calls
}

func (mock *scheduleRepoMock) MarkSent(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error) {
	if mock.MarkSentFunc == nil {
		panic("scheduleRepoMock.MarkSentFunc: method is nil but scheduleRepo.MarkSent was just called")
	}
	callInfo := struct {
		ID uuid.UUID
	}{ID: id}
	mock.lockMarkSent.Lock()
	mock.calls.MarkSent = append(mock.calls.MarkSent, callInfo)
	mock.lockMarkSent.Unlock()
	return mock.MarkSentFunc(ctx, id)
}

func (mock *scheduleRepoMock) MarkSentCalls() []struct {
	ID uuid.UUID
} {
	mock.lockMarkSent.RLock()
	calls := mock.calls.MarkSent
	mock.lockMarkSent.RUnlock()
	return calls
}

func (mock *scheduleRepoMock) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*domain.ScheduledPost, error) {
	if mock.MarkFailedFunc == nil {
		panic("scheduleRepoMock.MarkFailedFunc: method is nil but scheduleRepo.MarkFailed was just called")
	}
	callInfo := struct {
		ID     uuid.UUID
		Reason string
	}{ID: id, Reason: reason}
	mock.lockMarkFailed.Lock()
	mock.calls.MarkFailed = append(mock.calls.MarkFailed, callInfo)
	mock.lockMarkFailed.Unlock()
	return mock.MarkFailedFunc(ctx, id, reason)
}

func (mock *scheduleRepoMock) MarkFailedCalls() []struct {
	ID     uuid.UUID
	Reason string
} {
	mock.lockMarkFailed.RLock()
	calls := mock.calls.MarkFailed
	mock.lockMarkFailed.RUnlock()
	return calls
}

func (mock *scheduleRepoMock) CountByStatus(ctx context.Context) (map[domain.ScheduleStatus]int, error) {
	if mock.CountByStatusFunc == nil {
		panic("scheduleRepoMock.CountByStatusFunc: method is nil but scheduleRepo.CountByStatus was just called")
	}
	mock.lockCountByStatus.Lock()
	mock.calls.CountByStatus = append(mock.calls.CountByStatus, struct{}{})
	mock.lockCountByStatus.Unlock()
	return mock.CountByStatusFunc(ctx)
}

func (mock *scheduleRepoMock) CountByStatusCalls() []struct{} {
	mock.lockCountByStatus.RLock()
	calls := mock.calls.CountByStatus
	mock.lockCountByStatus.RUnlock()
	return calls
}
