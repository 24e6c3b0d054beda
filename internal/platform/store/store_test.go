package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hostdesk/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type recTracer struct{ events []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, ev pg.QueryEvent) { r.events = append(r.events, ev) }

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

type fakeRows struct {
	pgx.Rows
	n int
}

func (r *fakeRows) Next() bool { r.n--; return r.n >= 0 }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return []pgconn.FieldDescription{{Name: "id"}, {Name: "slug"}}
}

// fakeTx records statements and how the transaction ended
type fakeTx struct {
	pgx.Tx
	sqls       []string
	committed  bool
	rolledBack bool
	execErr    error
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return pgconn.NewCommandTag("UPDATE 1"), f.execErr
}

func (f *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sqls = append(f.sqls, sql)
	return &fakeRows{n: 2}, nil
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	return fakeRow{err: f.execErr}
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func newFakeAdapter(tx *fakeTx, tr pg.QueryTracer) *pgAdapter {
	return &pgAdapter{traced: traced{q: tx, tracer: tr}, begin: fakeBeginner{tx: tx}}
}

func TestOpen_NothingEnabled(t *testing.T) {
	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{AppName: "hostdesk-test"}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil {
		t.Fatalf("PG should stay nil when disabled")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on an empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_OptionError(t *testing.T) {
	bad := func(*Store) error { return errors.New("nope") }
	if _, err := Open(context.Background(), Config{}, bad); err == nil {
		t.Fatal("expected the option error")
	}
}

func TestGuard(t *testing.T) {
	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatal("nil store should fail Guard")
	}

	tx := &fakeTx{execErr: errors.New("down")}
	s := &Store{PG: newFakeAdapter(tx, nil)}
	err := s.Guard(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "pg: ") {
		t.Fatalf("Guard = %v", err)
	}
	if len(tx.sqls) != 1 || tx.sqls[0] != "select 1" {
		t.Fatalf("ping sql = %v", tx.sqls)
	}
}

func TestTraced_EmitsPerStatement(t *testing.T) {
	tr := &recTracer{}
	tx := &fakeTx{}
	q := traced{q: tx, tracer: tr, slowMs: 0}
	ctx := context.Background()

	ct, err := q.Exec(ctx, "update hosted_collectives set is_frozen = $1", true)
	if err != nil || ct.RowsAffected() != 1 {
		t.Fatalf("Exec = %v, %v", ct, err)
	}
	rs, err := q.Query(ctx, "select id, slug from hosted_collectives")
	if err != nil {
		t.Fatal(err)
	}
	if cols := rs.Columns(); len(cols) != 2 || cols[1] != "slug" {
		t.Fatalf("columns = %v", cols)
	}
	row := q.QueryRow(ctx, "select 1")
	if len(tr.events) != 2 {
		t.Fatalf("QueryRow must wait for Scan, events = %d", len(tr.events))
	}
	_ = row.Scan()
	if len(tr.events) != 3 {
		t.Fatalf("events = %d", len(tr.events))
	}
	// slowMs 0 marks everything slow
	if !tr.events[0].Slow || tr.events[0].SQL != "update hosted_collectives set is_frozen = $1" {
		t.Fatalf("event = %+v", tr.events[0])
	}

	quiet := traced{q: tx}
	if _, err := quiet.Exec(ctx, "select 1"); err != nil {
		t.Fatal(err)
	}
}

func TestTx_CommitAndRollback(t *testing.T) {
	ctx := context.Background()

	tr := &recTracer{}
	tx := &fakeTx{}
	a := newFakeAdapter(tx, tr)
	err := a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, "insert into hosted_collectives default values")
		return err
	})
	if err != nil || !tx.committed || tx.rolledBack {
		t.Fatalf("commit path: err=%v tx=%+v", err, tx)
	}
	if len(tr.events) != 1 {
		t.Fatalf("statements in a tx should be traced, got %d", len(tr.events))
	}

	tx = &fakeTx{}
	a = newFakeAdapter(tx, nil)
	boom := errors.New("boom")
	if err := a.Tx(ctx, func(RowQuerier) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Tx err = %v", err)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("rollback path: %+v", tx)
	}

	tx = &fakeTx{}
	a = newFakeAdapter(tx, nil)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic should propagate")
			}
		}()
		_ = a.Tx(ctx, func(RowQuerier) error { panic("boom") })
	}()
	if !tx.rolledBack {
		t.Fatal("panic should roll back")
	}

	a = &pgAdapter{begin: fakeBeginner{err: boom}}
	if err := a.Tx(ctx, func(RowQuerier) error { return nil }); !errors.Is(err, boom) {
		t.Fatalf("begin err = %v", err)
	}
}

func TestWaitReady(t *testing.T) {
	backoffStart, backoffMax = time.Millisecond, 2*time.Millisecond
	t.Cleanup(func() { backoffStart, backoffMax = 150*time.Millisecond, 2*time.Second })

	calls := 0
	flaky := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("starting up")
		}
		return nil
	}
	if err := waitReady(context.Background(), flaky, 5, time.Second); err != nil || calls != 3 {
		t.Fatalf("waitReady = %v after %d calls", err, calls)
	}

	down := func(context.Context) error { return errors.New("refused") }
	err := waitReady(context.Background(), down, 2, time.Second)
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts: refused") {
		t.Fatalf("waitReady = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := waitReady(ctx, down, 5, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waitReady = %v", err)
	}
}

func TestApplicationName(t *testing.T) {
	if applicationName("") != nil {
		t.Fatal("blank name needs no mutator")
	}
	pc := &pgxpool.Config{ConnConfig: &pgx.ConnConfig{}}
	applicationName("hostdesk-api")(pc)
	if pc.ConnConfig.RuntimeParams["application_name"] != "hostdesk-api" {
		t.Fatalf("runtime params = %v", pc.ConnConfig.RuntimeParams)
	}
}

func TestPGConfig_Defaults(t *testing.T) {
	var c PGConfig
	if c.retries() != 20 || c.pingTimeout() != 3*time.Second || c.txAttempts() != 3 {
		t.Fatalf("defaults = %d %s", c.retries(), c.pingTimeout())
	}
	c = PGConfig{ConnectRetries: 4, PingTimeout: time.Second}
	if c.retries() != 4 || c.pingTimeout() != time.Second {
		t.Fatalf("overrides = %d %s", c.retries(), c.pingTimeout())
	}
}

func TestTx_RetriesSerializationFailures(t *testing.T) {
	ctx := context.Background()
	conflict := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}

	tx := &fakeTx{}
	a := newFakeAdapter(tx, nil)
	a.attempts = 3
	runs := 0
	err := a.Tx(ctx, func(RowQuerier) error {
		runs++
		if runs < 3 {
			return conflict
		}
		return nil
	})
	if err != nil || runs != 3 || !tx.committed {
		t.Fatalf("err=%v runs=%d committed=%v", err, runs, tx.committed)
	}

	runs = 0
	err = a.Tx(ctx, func(RowQuerier) error { runs++; return conflict })
	if !errors.Is(err, conflict) || runs != 3 {
		t.Fatalf("exhausted: err=%v runs=%d", err, runs)
	}

	runs = 0
	boom := errors.New("boom")
	if err := a.Tx(ctx, func(RowQuerier) error { runs++; return boom }); !errors.Is(err, boom) || runs != 1 {
		t.Fatalf("non retryable: err=%v runs=%d", err, runs)
	}
}
