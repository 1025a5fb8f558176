package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/config"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/platform/postgres"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/auth"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// application holds the shared application dependencies so that wiring and
// shutdown stay in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	deckStore store.DeckStore
	cardStore store.CardStore
	logStore  store.ReviewLogStore
	userStore store.UserStore

	// Platform services
	jwtService auth.JWTService
	catalog    catalog.Catalog

	// Domain services
	deckService    *service.DeckService
	userService    *service.UserService
	sessionService *scheduler.SessionService
}

// newApplication wires every store and service from the given core
// dependencies. It fails fast on invalid configuration, like an unknown
// scheduler timezone or a weak JWT secret.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.logStore = postgres.NewPostgresReviewLogStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)

	app.catalog = catalog.NewEagleClient(
		cfg.Catalog.BaseURL,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
		logger,
	)
	logger.Info("catalog client initialized", slog.String("base_url", cfg.Catalog.BaseURL))

	// The day boundary for new-card quotas follows the configured
	// timezone; an empty value means the server's local time.
	location := time.Local
	if cfg.Scheduler.Timezone != "" {
		location, err = time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
		}
	}
	day := scheduler.NewDayPolicy(location)

	runner := store.NewSQLRunner(db)
	provider := srs.NewFSRSProvider()
	quota := scheduler.NewQuotaTracker(app.logStore, day)
	queues := scheduler.NewQueueBuilder(app.cardStore, quota, app.catalog, logger)
	rescheduler := scheduler.NewRescheduler(runner, app.cardStore, app.logStore, provider, logger)

	app.deckService = service.NewDeckService(
		runner,
		app.deckStore,
		app.cardStore,
		app.logStore,
		app.catalog,
		rescheduler,
		quota,
		time.Now,
		logger,
	)
	app.sessionService = scheduler.NewSessionService(
		runner,
		app.deckStore,
		app.cardStore,
		app.logStore,
		provider,
		queues,
		time.Now,
		logger,
	)
	app.userService = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		app.jwtService,
		logger,
	)

	logger.Info("application services initialized")
	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
