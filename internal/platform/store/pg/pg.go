// Package pg opens the pgx pool behind the store
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool subset of store.PGConfig
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG is an opened pool with its tracing settings
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL, applies mut after the config defaults and creates the pool
// the pool connects lazily so Open does not touch the network
func Open(ctx context.Context, cfg Config, tracer QueryTracer, mut func(*pgxpool.Config)) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if mut != nil {
		mut(pc)
	}

	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close is safe on a nil PG
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
