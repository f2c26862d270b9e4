// Package groceryshare собирает основное HTTP-приложение: хранилище,
// кеш, брокер, сервисы и маршруты.
package groceryshare

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/grocery-share/internal/cache"
	"github.com/magabrotheeeer/grocery-share/internal/config"
	"github.com/magabrotheeeer/grocery-share/internal/dataset"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sessiontoken"
	"github.com/magabrotheeeer/grocery-share/internal/migrations"
	"github.com/magabrotheeeer/grocery-share/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/grocery-share/internal/services/auth"
	mastertableservice "github.com/magabrotheeeer/grocery-share/internal/services/mastertable"
	subservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
	syncservice "github.com/magabrotheeeer/grocery-share/internal/services/sync"
	"github.com/magabrotheeeer/grocery-share/internal/sheets"
	"github.com/magabrotheeeer/grocery-share/internal/storage"
)

// App представляет основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewChannelPublisher(ch)

	sheetClient, err := sheets.NewClient(ctx, cfg.GoogleSheets)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	maker := sessiontoken.NewMaker(cfg.SessionSecretKey, cfg.SessionTTL)
	authService := authservice.NewAuthService(db, cacheRedis, publisher, logger)
	subscriptionService := subservice.NewSubscriptionService(db, logger)
	syncService := syncservice.New(db, sheetClient, logger)
	mastertableService := mastertableservice.New(cfg.MasterTableCSVURL, logger)
	datasetLoader := dataset.NewLoader(cfg.DataDir, cfg.ListsDir)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, maker,
		authService, subscriptionService, syncService, mastertableService, datasetLoader)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
