package store

import (
	"context"
	"fmt"
	"time"

	"hostdesk/internal/platform/logger"
	"hostdesk/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

// boot ping backoff bounds
var (
	backoffStart = 150 * time.Millisecond
	backoffMax   = 2 * time.Second
)

// openPG opens the pool and returns it only once a ping succeeds
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, applicationName(cfg.AppName))
	if err != nil {
		return nil, err
	}

	// ping the pool directly so boot retries stay out of the sql trace
	if err := waitReady(ctx, p.Pool.Ping, cfg.PG.retries(), cfg.PG.pingTimeout()); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p, cfg.PG.txAttempts()), nil
}

// applicationName tags pooled connections so they show up by binary in pg_stat_activity
func applicationName(name string) func(*pgxpool.Config) {
	if name == "" {
		return nil
	}
	return func(pc *pgxpool.Config) {
		if pc.ConnConfig.RuntimeParams == nil {
			pc.ConnConfig.RuntimeParams = map[string]string{}
		}
		pc.ConnConfig.RuntimeParams["application_name"] = name
	}
}

// waitReady pings up to attempts times with capped exponential backoff
func waitReady(ctx context.Context, ping func(context.Context) error, attempts int, timeout time.Duration) error {
	var lastErr error
	wait := backoffStart
	for range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(pctx)
		cancel()
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, backoffMax)
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}
