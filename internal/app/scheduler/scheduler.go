// Package scheduler собирает приложение планировщика: ежедневное
// обслуживание подписок, выгрузку в Google Sheets и напоминания.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/grocery-share/internal/config"
	"github.com/magabrotheeeer/grocery-share/internal/rabbitmq"
	schedulerservice "github.com/magabrotheeeer/grocery-share/internal/services/scheduler"
	subservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
	syncservice "github.com/magabrotheeeer/grocery-share/internal/services/sync"
	"github.com/magabrotheeeer/grocery-share/internal/sheets"
	"github.com/magabrotheeeer/grocery-share/internal/storage"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	sheetClient, err := sheets.NewClient(ctx, cfg.GoogleSheets)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to init sheets client: %w", err)
	}

	subscriptionService := subservice.NewSubscriptionService(db, logger)
	syncService := syncservice.New(db, sheetClient, logger)
	schedulerService := schedulerservice.NewSchedulerService(db, subscriptionService, syncService, logger)

	return &App{
		schedulerService: schedulerService,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает периодические задания планировщика.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.RunDailyJobs(ctx)
	go a.schedulerService.RunReminderJobs(ctx, a.ch)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
