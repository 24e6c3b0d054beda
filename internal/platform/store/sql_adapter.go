package store

import (
	"context"
	"errors"
	"time"

	perr "hostdesk/internal/platform/errors"
	"hostdesk/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced runs statements on q and reports each one to the tracer
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slowMs int
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

// QueryRow reports once Scan returns so the event carries the scan error
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.q.QueryRow(ctx, sql, args...)
	return scanHook{r: r, done: func(err error) { t.emit(ctx, sql, args, start, err) }}
}

func (t traced) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      t.slowMs >= 0 && us >= int64(t.slowMs)*1000,
	})
}

// beginner opens transactions, *pgxpool.Pool satisfies it
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgAdapter is the TxRunner backed by a pool
type pgAdapter struct {
	traced
	begin beginner
	close func()

	// attempts bounds Tx reruns on serialization failures and deadlocks, below 1 means once
	attempts int
}

func newPGAdapter(p *pg.PG, attempts int) *pgAdapter {
	return &pgAdapter{
		traced:   traced{q: p.Pool, tracer: p.Tracer, slowMs: p.SlowMs},
		begin:    p.Pool,
		close:    p.Close,
		attempts: attempts,
	}
}

// Ping runs a trivial query through the traced path
func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "select 1").Scan(&one)
}

// Close releases the pool
func (a *pgAdapter) Close() error {
	if a.close != nil {
		a.close()
	}
	return nil
}

// Tx runs fn on one transaction with the same tracing as the pool
// fn runs again on a fresh transaction while the failure is retryable, so it must not keep state across runs
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = a.runTx(ctx, fn)
		if err == nil || attempt >= a.attempts || !perr.IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
}

func (a *pgAdapter) runTx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.begin.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(traced{q: tx, tracer: a.tracer, slowMs: a.slowMs}); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}
	return tx.Commit(ctx)
}

type scanHook struct {
	r    pgx.Row
	done func(error)
}

func (s scanHook) Scan(dst ...any) error {
	err := s.r.Scan(dst...)
	s.done(err)
	return err
}

type rows struct{ pgx.Rows }

func (r rows) Columns() []string {
	fds := r.FieldDescriptions()
	out := make([]string, len(fds))
	for i, fd := range fds {
		out[i] = fd.Name
	}
	return out
}
