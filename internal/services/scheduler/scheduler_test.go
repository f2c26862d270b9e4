package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	subscriptionservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
	syncservice "github.com/magabrotheeeer/grocery-share/internal/services/sync"
)

type SweeperMock struct{ mock.Mock }

func (m *SweeperMock) UpdateExpired(ctx context.Context) (*subscriptionservice.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionservice.SweepResult), args.Error(1)
}

type SyncerMock struct{ mock.Mock }

func (m *SyncerMock) Run(ctx context.Context) (*syncservice.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncservice.Result), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRunDailyJobs_SweepThenSync(t *testing.T) {
	sweeper := new(SweeperMock)
	syncer := new(SyncerMock)
	svc := NewSchedulerService(nil, sweeper, syncer, newNoopLogger())

	sweeper.On("UpdateExpired", mock.Anything).
		Return(&subscriptionservice.SweepResult{Checked: 2, Updated: 2}, nil).Once()
	syncer.On("Run", mock.Anything).
		Return(&syncservice.Result{Synced: 5}, nil).Once()

	svc.runDailyJobs(context.Background())

	sweeper.AssertExpectations(t)
	syncer.AssertExpectations(t)
}

func TestRunDailyJobs_SweepFailureStillSyncs(t *testing.T) {
	sweeper := new(SweeperMock)
	syncer := new(SyncerMock)
	svc := NewSchedulerService(nil, sweeper, syncer, newNoopLogger())

	sweeper.On("UpdateExpired", mock.Anything).
		Return(nil, errors.New("db down")).Once()
	syncer.On("Run", mock.Anything).
		Return(&syncservice.Result{}, nil).Once()

	svc.runDailyJobs(context.Background())

	sweeper.AssertExpectations(t)
	syncer.AssertExpectations(t)
}
