package storage

import (
	"context"
	"fmt"
)

// CreateCheckIn добавляет отметку о входе пользователя и возвращает её ID.
func (s *Storage) CreateCheckIn(ctx context.Context, userUID, email string) (int, error) {
	const op = "storage.CreateCheckIn"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO check_ins (user_uid, email)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, userUID, email).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CountCheckInsByUser возвращает количество входов по каждому пользователю.
func (s *Storage) CountCheckInsByUser(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountCheckInsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, COUNT(*)
			  FROM check_ins
			  GROUP BY user_uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]int)
	for rows.Next() {
		var userUID string
		var count int
		if err := rows.Scan(&userUID, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[userUID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
