// Package store opens the storage backends hostdesk talks to and exposes them behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"hostdesk/internal/platform/logger"
)

// Store holds the opened backends
// a zero Store has no backends and closes cleanly
type Store struct {
	Log logger.Logger

	// PG is nil when postgres is disabled
	PG TxRunner
}

// Row is the scan surface of a single row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repos run sql against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also scope fn to one transaction
// fn's error rolls the transaction back, nil commits it
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger reports backend readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects every backend enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		db, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s.PG = db
		s.Log.Info().Str("app", cfg.AppName).Msg("postgres ready")
	}
	return s, nil
}

// Guard pings every backend that can be pinged
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	return nil
}

// Close releases every opened backend
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
