// Package app wires configuration into the long-lived dependencies shared by
// cmd/server and cmd/journalctl.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
	"trading-journal-go/internal/store"
	"trading-journal-go/internal/store/mongostore"
)

// OpenStore opens the backend selected by cfg.Driver. The returned store has
// answered a ping.
func OpenStore(ctx context.Context, cfg config.Store, logger *zap.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.URI, cfg.Database, cfg.Timeout, logger)
	case config.DriverSQLite:
		db, err := database.NewDatabase(cfg.URI, logger)
		if err != nil {
			return nil, err
		}
		if err := pingOrClose(ctx, db); err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// pingOrClose pings s and closes it when the ping fails.
func pingOrClose(ctx context.Context, s store.Store) error {
	err := s.Ping(ctx)
	if err == nil {
		return nil
	}
	if cerr := s.Close(ctx); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
