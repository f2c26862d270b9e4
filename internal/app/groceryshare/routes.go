// Package groceryshare предоставляет маршруты основного приложения.
package groceryshare

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/grocery-share/internal/config"
	"github.com/magabrotheeeer/grocery-share/internal/dataset"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/adminsession"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/currentuser"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/auth/verify"
	mastertablehandler "github.com/magabrotheeeer/grocery-share/internal/http/handlers/mastertable"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/subscription/updateexpired"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/subscription/updatestatus"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/syncsheets"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/table/export"
	"github.com/magabrotheeeer/grocery-share/internal/http/handlers/table/grid"
	"github.com/magabrotheeeer/grocery-share/internal/http/middlewarectx"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sessiontoken"
	authservice "github.com/magabrotheeeer/grocery-share/internal/services/auth"
	mastertableservice "github.com/magabrotheeeer/grocery-share/internal/services/mastertable"
	subservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
	syncservice "github.com/magabrotheeeer/grocery-share/internal/services/sync"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg *config.Config,
	maker sessiontoken.Maker,
	authService *authservice.AuthService,
	subscriptionService *subservice.SubscriptionService,
	syncService *syncservice.Service,
	mastertableService *mastertableservice.Service,
	datasetLoader *dataset.Loader,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.SessionMiddleware(maker, logger),
	)

	adminCreds := middlewarectx.AdminCredentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Учетные записи и сессии
		r.Route("/auth", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/signup", signup.New(logger, authService).ServeHTTP)
			r.Post("/login", login.New(logger, authService, maker, adminCreds, cfg.SessionTTL).ServeHTTP)
			r.Post("/logout", logout.New(logger).ServeHTTP)
			r.Get("/verify", verify.New(logger, authService).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(logger, authService).ServeHTTP)
			r.Post("/reset-password", resetpassword.New(logger, authService).ServeHTTP)
			r.Get("/me", currentuser.New(logger).ServeHTTP)
			r.Post("/admin", adminsession.New(logger, adminCreds, cfg.SessionTTL).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireSession(logger))
				r.Post("/change-password", changepassword.New(logger, authService).ServeHTTP)
			})
		})

		// Подписки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireSession(logger))
			r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/renew", renew.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/status", updatestatus.New(logger, subscriptionService).ServeHTTP)
		})

		// Административные операции
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Post("/subscriptions/update-expired", updateexpired.New(logger, subscriptionService).ServeHTTP)
			r.Post("/sync-sheets", syncsheets.New(logger, syncService).ServeHTTP)
		})

		// Закрытые таблицы: нужна сессия и действующая подписка
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireSession(logger))
			r.Use(middlewarectx.SubscriptionAccessMiddleware(logger, subscriptionService))
			r.Get("/table/{category}", grid.New(logger, datasetLoader).ServeHTTP)
			r.Get("/table/{category}/export", export.New(logger, datasetLoader).ServeHTTP)
			r.Get("/mastertable", mastertablehandler.New(logger, mastertableService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
