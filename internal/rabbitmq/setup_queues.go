package rabbitmq

// Очереди писем и их ключи маршрутизации.
const (
	VerificationQueue = "verification"
	RemindersQueue    = "reminders"
)

// QueueConfig описывает очередь и ключ маршрутизации для привязки к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetMailQueues возвращает очереди писем: служебные письма аккаунта
// (подтверждение почты, сброс пароля) и напоминания о продлении.
func GetMailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: VerificationQueue, RoutingKey: VerificationQueue},
		{QueueName: RemindersQueue, RoutingKey: RemindersQueue},
	}
}
