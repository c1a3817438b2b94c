// Package app builds the application's dependency container from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"invoicehub/config"
	"invoicehub/internal/api/middleware"
	"invoicehub/internal/auth"
	"invoicehub/internal/database"
	"invoicehub/internal/logger"
	"invoicehub/internal/notification"
	"invoicehub/internal/outbox"
	"invoicehub/internal/rabbitmq"
	"invoicehub/internal/render"
	"invoicehub/internal/services"
	"invoicehub/internal/storage/postgres"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	AMQP        *rabbitmq.Client

	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Notifier    *notification.Notifier
	Relay       *outbox.Relay

	UserService      services.UserService
	InvoiceService   services.InvoiceService
	DashboardService services.DashboardService

	ReminderLimiter *middleware.UserRateLimiter
}

// New connects to every configured backend and wires the services. Redis and the
// broker are optional: without them revocations stay in memory and outbox events
// are handed straight to the notifier.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.WithComponent("app")
	a := &Application{Config: cfg}

	pool, err := database.NewConnectionPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	a.DB = pool

	a.RedisClient, err = database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.RedisClient != nil {
		a.Revocations = auth.NewRedisRevocationStore(a.RedisClient)
	} else {
		log.Warn().Msg("Redis not configured, token revocations are kept in memory")
		a.Revocations = auth.NewMemoryRevocationStore()
	}

	a.Tokens = auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	a.Notifier = NewNotifier(cfg)

	var dispatcher outbox.Dispatcher = a.Notifier
	if cfg.AMQP.URI != "" {
		a.AMQP, err = rabbitmq.Dial(rabbitmq.Config{URI: cfg.AMQP.URI, Exchange: cfg.AMQP.Exchange, Queue: cfg.AMQP.Queue})
		if err != nil {
			a.Close()
			return nil, err
		}
		dispatcher = a.AMQP.Publisher()
	} else {
		log.Info().Msg("AMQP not configured, outbox events are delivered in-process")
	}

	transactor := postgres.NewTransactor(pool)
	invoiceRepo := postgres.NewInvoiceRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	renderer := render.NewFPDFRenderer(render.WithCompression(true), render.WithAuthor(cfg.Mail.FromName))

	a.UserService = services.NewUserService(userRepo, a.Tokens, a.Revocations)
	a.InvoiceService = services.NewInvoiceService(transactor, invoiceRepo, a.Notifier, renderer)
	a.DashboardService = services.NewDashboardService(invoiceRepo)

	a.Relay = outbox.NewRelay(transactor, dispatcher, outbox.Config{
		Interval:    cfg.Outbox.Interval,
		BatchSize:   cfg.Outbox.BatchSize,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	})
	a.ReminderLimiter = middleware.NewUserRateLimiter(cfg.RateLimit.ReminderPerMinute, cfg.RateLimit.ReminderBurst)

	return a, nil
}

// NewNotifier builds the notifier from the mail settings. Without an API token
// messages are only logged.
func NewNotifier(cfg *config.Config) *notification.Notifier {
	templates := notification.Templates{
		Created:  cfg.Mail.CreatedTemplateID,
		Updated:  cfg.Mail.UpdatedTemplateID,
		Reminder: cfg.Mail.ReminderTemplateID,
	}

	var sender notification.Sender
	if cfg.Mail.APIToken == "" {
		sender = notification.NewLogSender()
	} else {
		sender = notification.NewMailtrapSender(notification.MailtrapConfig{
			URL:     cfg.Mail.APIURL,
			Token:   cfg.Mail.APIToken,
			From:    notification.Recipient{Email: cfg.Mail.FromEmail, Name: cfg.Mail.FromName},
			Timeout: cfg.Mail.Timeout,
		})
	}
	return notification.NewNotifier(sender, templates, cfg.Server.BaseURL)
}

// InitSentry enables error capture when a DSN is configured. The returned func
// flushes buffered events.
func InitSentry(cfg config.SentryConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Close releases every open connection.
func (a *Application) Close() {
	log := logger.WithComponent("app")
	if a.AMQP != nil {
		if err := a.AMQP.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing AMQP connection")
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing Redis client")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
