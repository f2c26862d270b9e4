package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/grocery-share/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	type args struct {
		ctx  context.Context
		user models.User
	}

	token := "verify-token-123"

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(f *TestDataFactory, t *testing.T)
	}{
		{
			name: "successful create user",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:             "Test@Example.com",
					PasswordHash:      "hashedpassword",
					EmailVerified:     false,
					VerificationToken: &token,
				},
			},
			wantErr: false,
		},
		{
			name: "duplicate email",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:        "test@example.com",
					PasswordHash: "hashedpassword2",
				},
			},
			wantErr: true,
			setup: func(f *TestDataFactory, t *testing.T) {
				f.CreateUser(t, GetTestUserData().UID, "test@example.com", "hashedpassword", true)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			if tt.setup != nil {
				tt.setup(NewTestDataFactory(storage), t)
			}

			gotUID, err := storage.CreateUser(tt.args.ctx, tt.args.user)

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, gotUID)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, gotUID)
			NewTestVerification(storage).VerifyUserExists(t, gotUID)

			// Почта хранится в нижнем регистре
			got, err := storage.GetUserByEmail(tt.args.ctx, "TEST@EXAMPLE.COM")
			require.NoError(t, err)
			assert.Equal(t, "test@example.com", got.Email)
			assert.Equal(t, gotUID, got.UID)
		})
	}
}

func TestStorage_GetUserByVerificationToken(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	token := "verify-token-123"
	uid, err := storage.CreateUser(ctx, models.User{
		Email:             "test@example.com",
		PasswordHash:      "hashedpassword",
		VerificationToken: &token,
	})
	require.NoError(t, err)

	got, err := storage.GetUserByVerificationToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.False(t, got.EmailVerified)

	_, err = storage.GetUserByVerificationToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_MarkEmailVerified(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	token := "verify-token-123"
	uid, err := storage.CreateUser(ctx, models.User{
		Email:             "test@example.com",
		PasswordHash:      "hashedpassword",
		VerificationToken: &token,
	})
	require.NoError(t, err)

	require.NoError(t, storage.MarkEmailVerified(ctx, uid))

	got, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.VerificationToken)
}

func TestStorage_ResetTokenFlow(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	uid, err := storage.CreateUser(ctx, models.User{
		Email:         "test@example.com",
		PasswordHash:  "hashedpassword",
		EmailVerified: true,
	})
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour).UTC()
	require.NoError(t, storage.SetResetToken(ctx, uid, "reset-token-123", expires))

	got, err := storage.GetUserByResetToken(ctx, "reset-token-123")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	require.NotNil(t, got.ResetTokenExpires)
	assert.WithinDuration(t, expires, *got.ResetTokenExpires, time.Second)

	require.NoError(t, storage.UpdatePassword(ctx, uid, "newhash"))

	// После смены пароля токен сброса очищается
	_, err = storage.GetUserByResetToken(ctx, "reset-token-123")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
}

func TestStorage_CreateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	user := GetTestUserData()
	NewTestDataFactory(storage).CreateUser(t, user.UID, user.Email, user.PasswordHash, true)

	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(1, 0, 0)
	planType := "family"

	id, err := storage.CreateSubscription(ctx, models.Subscription{
		UserUID:   user.UID,
		Email:     user.Email,
		StartDate: startDate,
		EndDate:   &endDate,
		Status:    "active",
		PlanType:  &planType,
	})
	require.NoError(t, err)
	NewTestVerification(storage).VerifySubscriptionExists(t, id)

	got, err := storage.ReadSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.UID, got.UserUID)
	assert.Equal(t, user.Email, got.Email)
	assert.True(t, startDate.Equal(got.StartDate))
	require.NotNil(t, got.EndDate)
	assert.True(t, endDate.Equal(*got.EndDate))
	assert.Equal(t, "active", got.Status)
	require.NotNil(t, got.PlanType)
	assert.Equal(t, planType, *got.PlanType)
}

func TestStorage_ReadSubscription_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.ReadSubscription(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userA := GetTestUserData()
	factory.CreateUser(t, userA.UID, "a@example.com", userA.PasswordHash, true)
	userB := GetTestUserData()
	factory.CreateUser(t, userB.UID, "b@example.com", userB.PasswordHash, true)

	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateSubscription(t, userA.UID, "a@example.com", startDate, nil, "active")
	factory.CreateSubscription(t, userA.UID, "a@example.com", startDate, nil, "inactive")
	factory.CreateSubscription(t, userB.UID, "b@example.com", startDate, nil, "active")

	got, err := storage.ListSubscriptions(ctx, userA.UID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, sub := range got {
		assert.Equal(t, userA.UID, sub.UserUID)
	}

	all, err := storage.ListAllSubscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStorage_RenewSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := GetTestUserData()
	factory.CreateUser(t, user.UID, user.Email, user.PasswordHash, true)

	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := factory.CreateSubscription(t, user.UID, user.Email, startDate, &endDate, "expired")

	got, err := storage.RenewSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)
	require.NotNil(t, got.EndDate)
	assert.True(t, endDate.AddDate(1, 0, 0).Equal(*got.EndDate))
	require.NotNil(t, got.RenewalDate)
}

func TestStorage_UpdateSubscriptionStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := GetTestUserData()
	factory.CreateUser(t, user.UID, user.Email, user.PasswordHash, true)

	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := factory.CreateSubscription(t, user.UID, user.Email, startDate, nil, "active")

	rowsAffected, err := storage.UpdateSubscriptionStatus(ctx, id, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 1, rowsAffected)
	NewTestVerification(storage).VerifySubscriptionStatus(t, id, "cancelled")

	rowsAffected, err = storage.UpdateSubscriptionStatus(ctx, 999, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 0, rowsAffected)
}

func TestStorage_FindExpiredSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := GetTestUserData()
	factory.CreateUser(t, user.UID, user.Email, user.PasswordHash, true)

	startDate := time.Now().AddDate(-1, 0, 0)
	pastEnd := time.Now().AddDate(0, 0, -10)
	futureEnd := time.Now().AddDate(0, 1, 0)

	expiredID := factory.CreateSubscription(t, user.UID, user.Email, startDate, &pastEnd, "active")
	factory.CreateSubscription(t, user.UID, user.Email, startDate, &futureEnd, "active")
	factory.CreateSubscription(t, user.UID, user.Email, startDate, &pastEnd, "cancelled")
	factory.CreateSubscription(t, user.UID, user.Email, startDate, nil, "active")

	got, err := storage.FindExpiredSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expiredID, got[0].ID)
}

func TestStorage_CheckIns(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userA := GetTestUserData()
	factory.CreateUser(t, userA.UID, "a@example.com", userA.PasswordHash, true)
	userB := GetTestUserData()
	factory.CreateUser(t, userB.UID, "b@example.com", userB.PasswordHash, true)

	for range 3 {
		_, err := storage.CreateCheckIn(ctx, userA.UID, "a@example.com")
		require.NoError(t, err)
	}
	_, err := storage.CreateCheckIn(ctx, userB.UID, "b@example.com")
	require.NoError(t, err)

	counts, err := storage.CountCheckInsByUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[userA.UID])
	assert.Equal(t, 1, counts[userB.UID])
}
