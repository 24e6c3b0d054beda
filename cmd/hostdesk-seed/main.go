// Command hostdesk-seed prepares the hosted collectives table and fills it with sample rows
package main

import (
	"context"
	"fmt"
	"os"

	"hostdesk/internal/modkit/repokit"
	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/logger"
	"hostdesk/internal/platform/store"

	"hostdesk/internal/services/api/collectives/repo"

	"github.com/spf13/cobra"
)

var (
	envFiles []string
	host     string
	count    int
	seed     uint64

	st *store.Store
)

var rootCmd = &cobra.Command{
	Use:          "hostdesk-seed <command>",
	Short:        "Schema and sample data for hosted collectives",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.LoadDotEnv(envFiles...); err != nil {
			return fmt.Errorf("dotenv: %w", err)
		}
		pgCfg := config.New().Prefix("SERVICE_PGSQL_")
		s, err := store.Open(cmd.Context(), store.Config{
			AppName: "hostdesk-seed",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
				TxAttempts:  pgCfg.MayInt("TX_ATTEMPTS", 3),
			},
		}, store.WithLogger(*logger.Get()))
		if err != nil {
			return fmt.Errorf("store.Open: %w", err)
		}
		st = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(context.Background()); err != nil {
				logger.Get().Error().Err(err).Msg("failed to close store")
			}
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the hosted collectives table if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return repokit.MustBind(repo.NewPG(), st.PG).EnsureSchema(cmd.Context())
	},
}

var collectivesCmd = &cobra.Command{
	Use:   "collectives",
	Short: "Insert sample collectives for a host",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rows := generate(host, count, seed)
		err := st.PG.Tx(ctx, func(q store.RowQuerier) error {
			r := repo.NewPG().Bind(q)
			if err := r.EnsureSchema(ctx); err != nil {
				return err
			}
			for _, c := range rows {
				if err := r.Insert(ctx, c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		logger.Get().Info().Str("host", host).Int("rows", len(rows)).Msg("seeded hosted collectives")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env, .env.local)")

	collectivesCmd.Flags().StringVar(&host, "host", "opensource", "host slug that owns the rows")
	collectivesCmd.Flags().IntVar(&count, "count", 50, "number of collectives to insert")
	collectivesCmd.Flags().Uint64Var(&seed, "seed", 1, "generator seed, same seed gives the same rows")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(collectivesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
