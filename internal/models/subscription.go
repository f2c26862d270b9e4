package models

import "time"

// Возможные статусы подписки.
const (
	StatusActive         = "active"
	StatusInactive       = "inactive"
	StatusCancelled      = "cancelled"
	StatusExpired        = "expired"
	StatusPendingRenewal = "pending_renewal"
)

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище.
// Поле EndDate может быть nil — это означает бессрочную подписку.
type Subscription struct {
	ID          int        `json:"id"`                     // Идентификатор подписки
	UserUID     string     `json:"user_uid"`               // Идентификатор пользователя-владельца
	Email       string     `json:"email"`                  // Электронная почта владельца
	StartDate   time.Time  `json:"start_date"`             // Дата начала подписки
	EndDate     *time.Time `json:"end_date,omitempty"`     // Дата окончания, nil — бессрочная
	RenewalDate *time.Time `json:"renewal_date,omitempty"` // Дата последнего продления
	Status      string     `json:"status"`                 // Статус подписки
	PlanType    *string    `json:"plan_type,omitempty"`    // Тип тарифа
	CreatedAt   time.Time  `json:"created_at"`             // Дата создания записи
	UpdatedAt   time.Time  `json:"updated_at"`             // Дата последнего изменения записи
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription.
// Даты приходят в виде строк, чтобы их можно было валидировать и парсить вручную.
type DummySubscription struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"` // Почта владельца, по умолчанию — текущий пользователь
	StartDate string `json:"start_date,omitempty"`                       // Дата начала в формате 2006-01-02
	PlanType  string `json:"plan_type,omitempty"`                        // Тип тарифа
}
