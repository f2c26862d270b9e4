package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/grocery-share/internal/models"
)

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, email, start_date, end_date,
				  renewal_date, status, plan_type)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.Email, sub.StartDate, sub.EndDate, sub.RenewalDate,
		sub.Status, sub.PlanType).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает данные подписки по её ID.
func (s *Storage) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	sub, err := scanSubscription(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptions возвращает подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	return s.querySubscriptions(ctx, op, query, userUID)
}

// ListAllSubscriptions возвращает все подписки, новые первыми.
func (s *Storage) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  ORDER BY created_at DESC`
	return s.querySubscriptions(ctx, op, query)
}

// GetLatestSubscription возвращает последнюю созданную подписку пользователя.
func (s *Storage) GetLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetLatestSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	sub, err := scanSubscription(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// RenewSubscription продлевает подписку на год от текущей даты окончания,
// проставляет дату продления и активный статус.
func (s *Storage) RenewSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET end_date = end_date + INTERVAL '1 year',
				  renewal_date = CURRENT_DATE,
				  status = 'active',
				  updated_at = NOW()
			  WHERE id = $1
			  RETURNING id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query, id)
	sub, err := scanSubscription(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscriptionStatus обновляет статус подписки и возвращает
// количество изменённых строк.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int, error) {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindExpiredSubscriptions находит подписки с истекшей датой окончания,
// статус которых еще не переведен в inactive или cancelled.
func (s *Storage) FindExpiredSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.FindExpiredSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  WHERE status IN ('active', 'expired', 'pending_renewal')
				AND end_date IS NOT NULL
				AND end_date < CURRENT_DATE`
	return s.querySubscriptions(ctx, op, query)
}

// FindSubscriptionsExpiringTomorrow находит подписки, истекающие завтра.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, start_date, end_date, renewal_date,
				  status, plan_type, created_at, updated_at
			  FROM subscriptions
			  WHERE status = 'active'
				AND end_date = CURRENT_DATE + INTERVAL '1 day'`
	return s.querySubscriptions(ctx, op, query)
}

func (s *Storage) querySubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	var sub models.Subscription
	var endDate, renewalDate sql.NullTime
	var planType sql.NullString
	if err := scan(&sub.ID, &sub.UserUID, &sub.Email, &sub.StartDate, &endDate,
		&renewalDate, &sub.Status, &planType, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	if renewalDate.Valid {
		sub.RenewalDate = &renewalDate.Time
	}
	if planType.Valid {
		sub.PlanType = &planType.String
	}
	return &sub, nil
}
