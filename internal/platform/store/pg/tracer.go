package pg

import (
	"context"
	"strings"

	"hostdesk/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement run through the store
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at info and slow ones at warn
// it pins its own level so SERVICE_PGSQL_LOG_SQL works whatever LOG_LEVEL says
func Tracer(root logger.Logger) QueryTracer {
	return zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := z.log.Info()
	if ev.Slow {
		e = z.log.Warn()
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds whitespace runs so multi line sql logs on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
