// @title         Hostdesk API
// @version       0.1.0
// @description   Admin endpoints for the collectives a host fiscally sponsors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hostdesk/internal/modkit/httpkit"
	"hostdesk/internal/modkit/repokit"
	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/logger"
	phttp "hostdesk/internal/platform/net/http"
	"hostdesk/internal/platform/store"

	"hostdesk/internal/services/api"
)

func main() {
	// dotenv first, the logger reads LOG_* on first use
	loaded, dotErr := config.LoadDotEnv()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")    // http knobs live under CORE_API_*
	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*

	l := logger.Get()
	if dotErr != nil {
		l.Panic().Err(dotErr).Msg("dotenv load failed")
	}
	if len(loaded) > 0 {
		l.Debug().Strs("files", loaded).Msg("dotenv loaded")
	}

	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: root.MayString("APP_NAME", "hostdesk-api"),
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
				TxAttempts:  pgCfg.MayInt("TX_ATTEMPTS", 3),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	// reads CORE_API_PORT, CORE_API_SHUTDOWN_TIMEOUT and CORE_API_READ_HEADER_TIMEOUT
	srv := phttp.NewServer(apiCfg)

	// modules read their own prefixes off the root config
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Stack:          httpkit.StackFromConfig(apiCfg),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("addr", srv.Addr()).Msg("http server listening")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
