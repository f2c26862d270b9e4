// Package scheduler содержит периодические задания: перевод истекших
// подписок в inactive, выгрузку в Google Sheets и напоминания о продлении.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/models"
	"github.com/magabrotheeeer/grocery-share/internal/rabbitmq"
	subscriptionservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
	syncservice "github.com/magabrotheeeer/grocery-share/internal/services/sync"
)

// SubscriptionRepository определяет методы поиска подписок для напоминаний.
type SubscriptionRepository interface {
	FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.Subscription, error)
}

// Sweeper переводит истекшие подписки в inactive.
type Sweeper interface {
	UpdateExpired(ctx context.Context) (*subscriptionservice.SweepResult, error)
}

// Syncer выполняет выгрузку подписок в Google Sheets.
type Syncer interface {
	Run(ctx context.Context) (*syncservice.Result, error)
}

// SchedulerService запускает периодические задания.
type SchedulerService struct {
	repo    SubscriptionRepository
	sweeper Sweeper
	syncer  Syncer
	log     *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, sweeper Sweeper, syncer Syncer, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:    repo,
		sweeper: sweeper,
		syncer:  syncer,
		log:     log,
	}
}

// RunDailyJobs выполняет на старте и далее каждые 24 часа перевод
// истекших подписок в inactive и выгрузку в Google Sheets.
func (s *SchedulerService) RunDailyJobs(ctx context.Context) {
	s.runDailyJobs(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runDailyJobs(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) runDailyJobs(ctx context.Context) {
	s.log.Info("starting daily subscription maintenance")
	sweep, err := s.sweeper.UpdateExpired(ctx)
	if err != nil {
		s.log.Error("failed to deactivate expired subscriptions", sl.Err(err))
	} else {
		s.log.Info("deactivated expired subscriptions", slog.Int("updated", sweep.Updated))
	}

	result, err := s.syncer.Run(ctx)
	if err != nil {
		s.log.Error("failed to sync subscriptions to sheet", sl.Err(err))
		return
	}
	s.log.Info("synced subscriptions to sheet",
		slog.Int("synced", result.Synced), slog.Int("marked_inactive", result.MarkedInactive))
}

// RunReminderJobs каждые 12 часов находит подписки, истекающие завтра,
// и публикует задания на письма-напоминания.
func (s *SchedulerService) RunReminderJobs(ctx context.Context, channel *amqp.Channel) {
	s.runReminderJobs(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runReminderJobs(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) runReminderJobs(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find subscriptions expiring tomorrow")
	subs, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(subs) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", slog.Int("count", len(subs)))
	for _, sub := range subs {
		endDate := ""
		if sub.EndDate != nil {
			endDate = sub.EndDate.Format("2006-01-02")
		}
		job := models.ReminderJob{Email: sub.Email, EndDate: endDate}
		if err := rabbitmq.PublishMessage(channel, rabbitmq.MailExchange, rabbitmq.RemindersQueue, job); err != nil {
			s.log.Error("failed to publish reminder job", sl.Err(err))
		}
	}
}
