package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/anamboary/anamboary/internal/admin"
	"github.com/anamboary/anamboary/internal/config"
	"github.com/anamboary/anamboary/internal/identity"
	"github.com/anamboary/anamboary/internal/ledger"
	"github.com/anamboary/anamboary/internal/middleware"
	"github.com/anamboary/anamboary/internal/notification"
	"github.com/anamboary/anamboary/internal/session"
	"github.com/anamboary/anamboary/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Storage and services.
	store := ledger.NewPostgresStore(d.DB)
	identityRepo := identity.NewPostgresRepository(d.DB)
	identitySvc := identity.NewService(identityRepo)
	sessions := session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)

	notifier := notification.NewLoggerNotifier(d.Logger)
	dispatcher := notification.NewDispatcher(notifier, d.Logger)
	app.Hooks().OnShutdown(func() error {
		dispatcher.Close()
		return nil
	})

	walletSvc := wallet.NewService(store, dispatcher)

	authHandler := identity.NewHandler(identitySvc, sessions, dispatcher)
	walletHandler := wallet.NewHandler(walletSvc)
	adminHandler := admin.NewHandler(d.Cfg.AdminUsername, d.Cfg.AdminPassword, identitySvc, sessions)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	userAuth := middleware.SessionAuth(sessions, session.RoleUser)
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterAuthRoutes(api, authHandler, userAuth, rateLimiter)

	protected := api.Group("", userAuth)
	protected.Get("/dashboard", walletHandler.Dashboard)

	// Wallet mutations accept an optional Idempotency-Key for safe retries.
	walletGroup := protected.Group("/wallet", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterWalletRoutes(walletGroup, walletHandler)

	adminAuth := middleware.SessionAuth(sessions, session.RoleAdmin)
	RegisterAdminRoutes(api, adminHandler, adminAuth)

	return nil
}
