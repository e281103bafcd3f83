package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cms-search/config"
	"cms-search/driver"
	"cms-search/gateway"
	"cms-search/logger"

	"github.com/cenkalti/backoff/v5"
)

const dbConnectAttempts = 5

// initContentStore connects to Postgres when configured, otherwise returns the in-memory store.
func initContentStore(ctx context.Context, cfg *config.Config) (gateway.ContentStoreDriver, func(), error) {
	if cfg.Database == nil {
		logger.Logger.Warn("no database configured, using in-memory content store")
		return driver.NewMemoryContentDriver(), func() {}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 10 * time.Second

	attempt := 0
	dbDriver, err := backoff.Retry(ctx, func() (*driver.DatabaseDriver, error) {
		attempt++
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
		defer cancel()
		return driver.NewDatabaseDriverFromURL(connectCtx, cfg.Database.BuildPostgresURL())
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(dbConnectAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Logger.Warn("database not ready, retrying", "attempt", attempt, "max", dbConnectAttempts, "retry_in", wait, "err", err)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database init: %w", err)
	}

	if err := dbDriver.EnsureSchema(ctx); err != nil {
		dbDriver.Close()
		return nil, nil, fmt.Errorf("database schema: %w", err)
	}

	return dbDriver, dbDriver.Close, nil
}
