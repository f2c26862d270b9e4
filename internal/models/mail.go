package models

// Виды писем, публикуемых в очередь verification.
const (
	MailKindVerification  = "verification"
	MailKindPasswordReset = "password_reset"
)

// MailJob описывает задание на отправку служебного письма
// (подтверждение почты или сброс пароля), публикуемое в RabbitMQ.
type MailJob struct {
	Kind  string `json:"kind"`  // Вид письма: verification или password_reset
	Email string `json:"email"` // Адрес получателя
	Token string `json:"token"` // Одноразовый токен для ссылки в письме
}

// ReminderJob описывает задание на отправку напоминания
// о скором окончании подписки.
type ReminderJob struct {
	Email   string `json:"email"`    // Адрес получателя
	EndDate string `json:"end_date"` // Дата окончания подписки в формате 2006-01-02
}
