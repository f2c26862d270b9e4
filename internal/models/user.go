// Package models содержит доменные модели системы: пользователей,
// подписки, отметки о входе и задания на отправку писем.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID               string     // Уникальный идентификатор пользователя
	Email             string     // Электронная почта, хранится в нижнем регистре
	PasswordHash      string     // Хэш пароля пользователя
	EmailVerified     bool       // Подтверждена ли почта
	VerificationToken *string    // Токен подтверждения почты, nil после подтверждения
	ResetToken        *string    // Токен сброса пароля
	ResetTokenExpires *time.Time // Срок действия токена сброса
	CreatedAt         time.Time  // Дата регистрации
}
