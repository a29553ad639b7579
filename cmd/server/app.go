package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/usersync/users-service/internal/api"
	"github.com/usersync/users-service/internal/api/middleware"
	"github.com/usersync/users-service/internal/authz"
	"github.com/usersync/users-service/internal/config"
	"github.com/usersync/users-service/internal/platform/postgres"
	"github.com/usersync/users-service/internal/service"
	"github.com/usersync/users-service/internal/service/auth"
	"github.com/usersync/users-service/internal/store"
)

// application holds the shared dependencies and owns their cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	interestStore store.InterestStore
	transactor    store.Transactor

	resolver  *service.IdentityResolver
	profiles  *service.ProfileService
	interests *service.InterestService

	identity *middleware.IdentityMiddleware
	actors   *middleware.ActorMiddleware
}

// newApplication builds the application on a Postgres pool.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	users := postgres.NewPostgresUserStore(db, cfg.Database.QueryTimeout, logger)
	interests := postgres.NewPostgresInterestStore(db, cfg.Database.QueryTimeout, logger)

	app, err := newApplicationWithStores(cfg, logger, users, interests, postgres.NewTransactor(db))
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// newApplicationWithStores wires services and middleware over the given
// stores. Tests use it with in-memory stores.
func newApplicationWithStores(
	cfg *config.Config,
	logger *slog.Logger,
	users store.UserStore,
	interests store.InterestStore,
	tx store.Transactor,
) (*application, error) {
	app := &application{
		config:        cfg,
		logger:        logger,
		userStore:     users,
		interestStore: interests,
		transactor:    tx,
	}

	guard := authz.NewGuard()
	app.resolver = service.NewIdentityResolver(users, logger)
	app.profiles = service.NewProfileService(users, interests, tx, guard, logger)
	app.interests = service.NewInterestService(users, interests, guard, logger)

	var verifier auth.TokenVerifier
	if cfg.Auth.Mode == config.AuthModeToken {
		v, err := auth.NewHMACTokenVerifier(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
		}
		verifier = v
	}

	identity, err := middleware.NewIdentityMiddleware(cfg.Auth, verifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity middleware: %w", err)
	}
	app.identity = identity
	app.actors = middleware.NewActorMiddleware(app.resolver, logger)

	logger.Info("application initialized", "auth_mode", cfg.Auth.Mode)
	return app, nil
}

func (app *application) userHandler() *api.UserHandler {
	return api.NewUserHandler(app.resolver, app.profiles, app.config.Search.DefaultLimit, app.logger)
}

func (app *application) interestHandler() *api.InterestHandler {
	return api.NewInterestHandler(app.interests, app.logger)
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
		return
	}
	app.logger.Info("database connection closed")
}
