package sync

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
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *RepoMock) CountCheckInsByUser(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

// SheetFake хранит строки в памяти и ведет себя как настоящий лист.
type SheetFake struct {
	rows    [][]string
	readErr error
	updates int
	writes  int
}

func (f *SheetFake) Read(_ context.Context) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

func (f *SheetFake) UpdateRow(_ context.Context, rowIndex int, row []string) error {
	for len(f.rows) <= rowIndex {
		f.rows = append(f.rows, nil)
	}
	f.rows[rowIndex] = row
	f.updates++
	return nil
}

func (f *SheetFake) Write(_ context.Context, rows [][]string, _ int) error {
	f.rows = append(f.rows, rows...)
	f.writes++
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func testSubscription(uid, email, start, end string) *models.Subscription {
	endDate := date(end)
	return &models.Subscription{
		ID:        1,
		UserUID:   uid,
		Email:     email,
		StartDate: date(start),
		EndDate:   &endDate,
		Status:    models.StatusActive,
	}
}

func TestRun_AppendsNewSubscriptions(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{}
	svc := New(repo, sheet, newNoopLogger())

	sub := testSubscription("uid-1", "a@b.com", "2026-01-01", "2027-01-01")
	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{sub}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{"uid-1": 3}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.MarkedInactive)
	assert.Len(t, sheet.rows, 1)
	assert.Equal(t, "uid-1", sheet.rows[0][0])
	assert.Equal(t, "a@b.com", sheet.rows[0][1])
	assert.Equal(t, "3", sheet.rows[0][8])
	repo.AssertExpectations(t)
}

func TestRun_SecondRunUpdatesInsteadOfAppending(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{}
	svc := New(repo, sheet, newNoopLogger())

	sub := testSubscription("uid-1", "a@b.com", "2026-01-01", "2027-01-01")
	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{sub}, nil).Twice()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Twice()

	_, err := svc.Run(context.Background())
	assert.NoError(t, err)
	_, err = svc.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, sheet.rows, 1, "second run must not duplicate the row")
	assert.Equal(t, 1, sheet.writes)
	assert.Equal(t, 1, sheet.updates)
}

func TestRun_MarksOrphanedRowInactive(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{
		rows: [][]string{
			{"gone-uid", "gone@b.com", "2025-01-01", "2026-01-01", "", "active"},
		},
	}
	svc := New(repo, sheet, newNoopLogger())

	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.MarkedInactive)
	assert.Equal(t, models.StatusInactive, sheet.rows[0][5])
}

func TestRun_NormalizesLegacyEmailFirstRow(t *testing.T) {
	repo := new(RepoMock)
	// Старая раскладка: почта в первой колонке, uid отсутствует.
	sheet := &SheetFake{
		rows: [][]string{
			{"old@b.com", "2025-01-01", "2026-01-01"},
		},
	}
	svc := New(repo, sheet, newNoopLogger())

	sub := testSubscription("uid-9", "other@b.com", "2026-01-01", "2027-01-01")
	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{sub}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.MarkedInactive)
	legacy := sheet.rows[0]
	assert.GreaterOrEqual(t, len(legacy), 6)
	assert.Equal(t, "", legacy[0], "unknown owner leaves the uid cell empty")
	assert.Equal(t, "old@b.com", legacy[1], "email must move to its current column")
	assert.Equal(t, models.StatusInactive, legacy[5])
}

func TestRun_LegacyOrphanKeepsPlanTypeCell(t *testing.T) {
	repo := new(RepoMock)
	// Полная строка старой раскладки: статус в пятой колонке, тариф в шестой.
	sheet := &SheetFake{
		rows: [][]string{
			{"old@b.com", "2025-01-01", "2026-01-01", "", "active", "premium"},
		},
	}
	svc := New(repo, sheet, newNoopLogger())

	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.MarkedInactive)
	row := sheet.rows[0]
	assert.Equal(t, []string{"", "old@b.com", "2025-01-01", "2026-01-01", "", models.StatusInactive, "premium"}, row)
}

func TestRun_MatchesLegacyRowByEmail(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{
		rows: [][]string{
			{"a@b.com", "2026-01-01", "2027-01-01"},
		},
	}
	svc := New(repo, sheet, newNoopLogger())

	sub := testSubscription("uid-1", "a@b.com", "2026-01-01", "2027-01-01")
	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{sub}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.MarkedInactive)
	assert.Equal(t, 0, sheet.writes, "legacy row with matching email and dates must be updated, not appended")
	assert.Equal(t, "uid-1", sheet.rows[0][0])
}

func TestRun_ClassifiedReadErrorAborts(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{readErr: errors.New("googleapi: Error 403: PERMISSION_DENIED")}
	svc := New(repo, sheet, newNoopLogger())

	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	_, err := svc.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no access to the spreadsheet")
}

func TestRun_BenignReadErrorContinues(t *testing.T) {
	repo := new(RepoMock)
	sheet := &SheetFake{readErr: errors.New("empty response")}
	svc := New(repo, sheet, newNoopLogger())

	repo.On("ListAllSubscriptions", mock.Anything).Return([]*models.Subscription{}, nil).Once()
	repo.On("CountCheckInsByUser", mock.Anything).Return(map[string]int{}, nil).Once()

	result, err := svc.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
}

func TestDaysRemaining(t *testing.T) {
	today := date("2026-08-29")

	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{name: "nil end date", end: nil, want: "Unlimited"},
		{name: "today", end: ptr(date("2026-08-29")), want: "0"},
		{name: "tomorrow", end: ptr(date("2026-08-30")), want: "1"},
		{name: "past", end: ptr(date("2026-08-01")), want: "Expired"},
		{name: "far future", end: ptr(date("2026-09-28")), want: "30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(tt.end, today))
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "permission denied",
			err:  errors.New("googleapi: Error 403: The caller does not have permission, PERMISSION_DENIED"),
			want: "service account has no access to the spreadsheet",
		},
		{
			name: "bad range",
			err:  errors.New("googleapi: Error 400: Unable to parse range: Sheet9!A2:Z1000"),
			want: "sheet name or range is invalid",
		},
		{
			name: "not found",
			err:  errors.New("googleapi: Error 404: Requested entity was not found., notFound"),
			want: "spreadsheet not found, check the spreadsheet id",
		},
		{
			name: "bad credentials",
			err:  errors.New("oauth2: \"invalid_grant\" \"Invalid JWT Signature.\""),
			want: "invalid service account credentials",
		},
		{
			name: "unrecognized",
			err:  errors.New("connection reset by peer"),
			want: "",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestBuildRow(t *testing.T) {
	end := date("2027-01-01")
	plan := "family"
	sub := &models.Subscription{
		ID:        7,
		UserUID:   "uid-7",
		Email:     "a@b.com",
		StartDate: date("2026-01-01"),
		EndDate:   &end,
		Status:    models.StatusActive,
		PlanType:  &plan,
		CreatedAt: date("2026-01-01"),
		UpdatedAt: date("2026-01-02"),
	}

	row := BuildRow(sub, 5, date("2026-08-29"))

	assert.Len(t, row, 11)
	assert.Equal(t, "uid-7", row[0])
	assert.Equal(t, "a@b.com", row[1])
	assert.Equal(t, "2026-01-01", row[2])
	assert.Equal(t, "2027-01-01", row[3])
	assert.Equal(t, "", row[4])
	assert.Equal(t, models.StatusActive, row[5])
	assert.Equal(t, "family", row[6])
	assert.Equal(t, "125", row[7])
	assert.Equal(t, "5", row[8])
}

func TestBuildRow_WithoutUID(t *testing.T) {
	sub := &models.Subscription{ID: 42, Email: "a@b.com", StartDate: date("2026-01-01")}
	row := BuildRow(sub, 0, date("2026-08-29"))

	assert.Equal(t, "42", row[0])
	assert.Equal(t, "Unlimited", row[7])
}
