package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/usersync/users-service/internal/platform/postgres"
)

// handleMigrations runs one goose command from the -migrate flag.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !slices.Contains(postgres.MigrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", command, postgres.MigrationCommands)
	}
	logger.Info("executing migrations", "command", command)
	return postgres.Migrate(ctx, db, command, logger)
}
