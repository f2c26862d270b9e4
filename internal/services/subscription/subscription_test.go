package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/grocery-share/internal/models"
	"github.com/magabrotheeeer/grocery-share/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *RepoMock) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *RepoMock) GetLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) RenewSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int, error) {
	args := m.Called(ctx, id, status)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) FindExpiredSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreate_DefaultsToOneYearFromToday(t *testing.T) {
	repo := new(RepoMock)
	svc := NewSubscriptionService(repo, newNoopLogger())

	repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		if sub.UserUID != "uid-1" || sub.Email != "a@b.com" || sub.Status != models.StatusActive {
			return false
		}
		if sub.EndDate == nil {
			return false
		}
		return sub.EndDate.Equal(sub.StartDate.AddDate(1, 0, 0))
	})).Return(10, nil).Once()

	id, err := svc.Create(context.Background(), "uid-1", "a@b.com", models.DummySubscription{})

	assert.NoError(t, err)
	assert.Equal(t, 10, id)
	repo.AssertExpectations(t)
}

func TestCreate_ExplicitStartDateAndEmail(t *testing.T) {
	repo := new(RepoMock)
	svc := NewSubscriptionService(repo, newNoopLogger())

	start, _ := time.Parse("2006-01-02", "2026-03-01")
	repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.Email == "other@b.com" &&
			sub.StartDate.Equal(start) &&
			sub.EndDate.Equal(start.AddDate(1, 0, 0)) &&
			sub.PlanType != nil && *sub.PlanType == "family"
	})).Return(11, nil).Once()

	id, err := svc.Create(context.Background(), "uid-1", "a@b.com", models.DummySubscription{
		Email:     "other@b.com",
		StartDate: "2026-03-01",
		PlanType:  "family",
	})

	assert.NoError(t, err)
	assert.Equal(t, 11, id)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidStartDate(t *testing.T) {
	repo := new(RepoMock)
	svc := NewSubscriptionService(repo, newNoopLogger())

	_, err := svc.Create(context.Background(), "uid-1", "a@b.com", models.DummySubscription{
		StartDate: "not a date",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateSubscription")
}

func TestRenew(t *testing.T) {
	owned := &models.Subscription{ID: 5, UserUID: "uid-1"}
	foreign := &models.Subscription{ID: 5, UserUID: "uid-2"}

	tests := []struct {
		name       string
		userUID    string
		isAdmin    bool
		setupMocks func(repo *RepoMock)
		wantErr    error
	}{
		{
			name:    "owner renews",
			userUID: "uid-1",
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadSubscription", mock.Anything, 5).Return(owned, nil).Once()
				repo.On("RenewSubscription", mock.Anything, 5).Return(owned, nil).Once()
			},
		},
		{
			name:    "stranger is rejected",
			userUID: "uid-1",
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadSubscription", mock.Anything, 5).Return(foreign, nil).Once()
			},
			wantErr: ErrForbidden,
		},
		{
			name:    "admin renews any subscription",
			userUID: "",
			isAdmin: true,
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadSubscription", mock.Anything, 5).Return(foreign, nil).Once()
				repo.On("RenewSubscription", mock.Anything, 5).Return(foreign, nil).Once()
			},
		},
		{
			name:    "missing subscription",
			userUID: "uid-1",
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadSubscription", mock.Anything, 5).
					Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewSubscriptionService(repo, newNoopLogger())

			tt.setupMocks(repo)

			_, err := svc.Renew(context.Background(), 5, tt.userUID, tt.isAdmin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	repo := new(RepoMock)
	svc := NewSubscriptionService(repo, newNoopLogger())

	err := svc.UpdateStatus(context.Background(), 5, "frozen", "uid-1", false)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "ReadSubscription")
}

func TestUpdateExpired(t *testing.T) {
	repo := new(RepoMock)
	svc := NewSubscriptionService(repo, newNoopLogger())

	expired := []*models.Subscription{
		{ID: 1, UserUID: "uid-1"},
		{ID: 2, UserUID: "uid-2"},
		{ID: 3, UserUID: "uid-3"},
	}
	repo.On("FindExpiredSubscriptions", mock.Anything).Return(expired, nil).Once()
	repo.On("UpdateSubscriptionStatus", mock.Anything, 1, models.StatusInactive).Return(1, nil).Once()
	repo.On("UpdateSubscriptionStatus", mock.Anything, 2, models.StatusInactive).
		Return(0, errors.New("db down")).Once()
	repo.On("UpdateSubscriptionStatus", mock.Anything, 3, models.StatusInactive).Return(1, nil).Once()

	result, err := svc.UpdateExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 2, result.Updated)
	assert.Len(t, result.Errors, 1)
	repo.AssertExpectations(t)
}

func TestHasActiveAccess(t *testing.T) {
	future := time.Now().AddDate(0, 1, 0)
	past := time.Now().AddDate(0, -1, 0)

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		want       bool
	}{
		{
			name: "active subscription",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(&models.Subscription{Status: models.StatusActive, EndDate: &future}, nil).Once()
			},
			want: true,
		},
		{
			name: "no subscription",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(nil, storage.ErrNotFound).Once()
			},
			want: false,
		},
		{
			name: "inactive status",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(&models.Subscription{Status: models.StatusInactive, EndDate: &future}, nil).Once()
			},
			want: false,
		},
		{
			name: "cancelled status",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(&models.Subscription{Status: models.StatusCancelled, EndDate: &future}, nil).Once()
			},
			want: false,
		},
		{
			name: "end date in the past",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(&models.Subscription{Status: models.StatusActive, EndDate: &past}, nil).Once()
			},
			want: false,
		},
		{
			name: "no end date means unlimited",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetLatestSubscription", mock.Anything, "uid-1").
					Return(&models.Subscription{Status: models.StatusActive}, nil).Once()
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewSubscriptionService(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.HasActiveAccess(context.Background(), "uid-1")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			repo.AssertExpectations(t)
		})
	}
}
