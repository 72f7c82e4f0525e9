package database

import (
	"context"
	"fmt"
	"log/slog"
)

func NewDatabase(ctx context.Context, rawEndpoint, username, password string) (DatabaseService, error) {
	endpoint, err := ParseEndpoint(rawEndpoint)
	if err != nil {
		return nil, err
	}

	database, err := NewSQLDatabase(ctx, endpoint, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database at %s: %w", endpoint.Dialect, endpoint, err)
	}

	slog.Info("database session opened", "dialect", endpoint.Dialect, "endpoint", endpoint.String())
	return database, nil
}
