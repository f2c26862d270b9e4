// Package subscription содержит бизнес-логику управления подписками:
// создание, продление, смену статуса и перевод истекших подписок в inactive.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/models"
	"github.com/magabrotheeeer/grocery-share/internal/storage"
)

// Ошибки бизнес-логики подписок.
var (
	// ErrNotFound — подписка не найдена.
	ErrNotFound = errors.New("subscription not found")
	// ErrForbidden — подписка принадлежит другому пользователю.
	ErrForbidden = errors.New("subscription belongs to another user")
	// ErrInvalidStatus — недопустимый статус подписки.
	ErrInvalidStatus = errors.New("invalid subscription status")
)

// Статусы, которые можно выставить вручную.
var allowedStatuses = map[string]struct{}{
	models.StatusActive:         {},
	models.StatusExpired:        {},
	models.StatusCancelled:      {},
	models.StatusPendingRenewal: {},
}

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// ReadSubscription возвращает подписку по ID.
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// ListSubscriptions возвращает подписки пользователя, новые первыми.
	ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error)
	// ListAllSubscriptions возвращает все подписки, новые первыми.
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	// GetLatestSubscription возвращает последнюю созданную подписку пользователя.
	GetLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// RenewSubscription продлевает подписку на год и возвращает её.
	RenewSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// UpdateSubscriptionStatus обновляет статус подписки.
	UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int, error)
	// FindExpiredSubscriptions находит подписки с истекшей датой окончания.
	FindExpiredSubscriptions(ctx context.Context) ([]*models.Subscription, error)
}

// SweepResult содержит итоги перевода истекших подписок в inactive.
type SweepResult struct {
	Checked int      `json:"checked"` // Сколько подписок-кандидатов найдено
	Updated int      `json:"updated"` // Сколько переведено в inactive
	Errors  []string `json:"errors,omitempty"`
}

// SubscriptionService реализует бизнес-логику работы с подписками.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
	}
}

// Create создает подписку со сроком один год. Пустая дата начала
// означает сегодняшний день, пустая почта — почту текущего пользователя.
func (s *SubscriptionService) Create(ctx context.Context, userUID, userEmail string, req models.DummySubscription) (int, error) {
	startDate := time.Now().Truncate(24 * time.Hour)
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return 0, fmt.Errorf("invalid start date: %w", err)
		}
		startDate = parsed
	}
	endDate := startDate.AddDate(1, 0, 0)

	email := req.Email
	if email == "" {
		email = userEmail
	}
	var planType *string
	if req.PlanType != "" {
		planType = &req.PlanType
	}

	sub := models.Subscription{
		UserUID:   userUID,
		Email:     email,
		StartDate: startDate,
		EndDate:   &endDate,
		Status:    models.StatusActive,
		PlanType:  planType,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new subscription", slog.Int("id", id), slog.String("user_uid", userUID))
	return id, nil
}

// List возвращает подписки: все для администратора, свои для пользователя.
func (s *SubscriptionService) List(ctx context.Context, userUID string, isAdmin bool) ([]*models.Subscription, error) {
	if isAdmin {
		return s.repo.ListAllSubscriptions(ctx)
	}
	return s.repo.ListSubscriptions(ctx, userUID)
}

// Renew продлевает подписку на год от текущей даты окончания.
// Чужую подписку может продлить только администратор.
func (s *SubscriptionService) Renew(ctx context.Context, id int, userUID string, isAdmin bool) (*models.Subscription, error) {
	if err := s.checkOwnership(ctx, id, userUID, isAdmin); err != nil {
		return nil, err
	}
	sub, err := s.repo.RenewSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("renewed subscription", slog.Int("id", id))
	return sub, nil
}

// UpdateStatus выставляет подписке один из допустимых статусов.
func (s *SubscriptionService) UpdateStatus(ctx context.Context, id int, status, userUID string, isAdmin bool) error {
	if _, ok := allowedStatuses[status]; !ok {
		return ErrInvalidStatus
	}
	if err := s.checkOwnership(ctx, id, userUID, isAdmin); err != nil {
		return err
	}
	if _, err := s.repo.UpdateSubscriptionStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("updated subscription status", slog.Int("id", id), slog.String("status", status))
	return nil
}

// UpdateExpired переводит подписки с прошедшей датой окончания в inactive.
// Ошибки отдельных строк собираются, но не прерывают проход.
func (s *SubscriptionService) UpdateExpired(ctx context.Context) (*SweepResult, error) {
	expired, err := s.repo.FindExpiredSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Checked: len(expired)}
	for _, sub := range expired {
		if _, err := s.repo.UpdateSubscriptionStatus(ctx, sub.ID, models.StatusInactive); err != nil {
			s.log.Error("failed to deactivate expired subscription",
				slog.Int("id", sub.ID), sl.Err(err))
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: %v", sub.ID, err))
			continue
		}
		result.Updated++
	}
	s.log.Info("expired subscriptions sweep finished",
		slog.Int("checked", result.Checked), slog.Int("updated", result.Updated))
	return result, nil
}

// HasActiveAccess сообщает, открыт ли пользователю доступ к закрытым разделам.
// Доступ закрыт без подписки, при статусе inactive или cancelled
// и при прошедшей дате окончания.
func (s *SubscriptionService) HasActiveAccess(ctx context.Context, userUID string) (bool, error) {
	sub, err := s.repo.GetLatestSubscription(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if sub.Status == models.StatusInactive || sub.Status == models.StatusCancelled {
		return false, nil
	}
	if sub.EndDate != nil {
		today := time.Now().Truncate(24 * time.Hour)
		if sub.EndDate.Before(today) {
			return false, nil
		}
	}
	return true, nil
}

func (s *SubscriptionService) checkOwnership(ctx context.Context, id int, userUID string, isAdmin bool) error {
	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !isAdmin && sub.UserUID != userUID {
		return ErrForbidden
	}
	return nil
}
