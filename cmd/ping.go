package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gophersignal/internal/redisclient"
	"gophersignal/internal/storage"

	"github.com/spf13/cobra"
)

// pingCmd checks connectivity to the configured Redis and Postgres.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var errs []error
		if rdb := redisclient.New(cfg.Redis); rdb != nil {
			defer rdb.Close()
			if err := storage.NewRedisStore(rdb, 0, 0).Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("redis: %w", err))
			} else {
				fmt.Fprintln(out, "redis: PONG")
			}
		} else {
			fmt.Fprintln(out, "redis: not configured")
		}

		if cfg.Database.DSN == "" {
			fmt.Fprintln(out, "database: not configured")
			return errors.Join(errs...)
		}
		store, err := storage.OpenPostgres(ctx, cfg.Database.DSN, cfg.Database.MaxContentLength)
		if err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
			return errors.Join(errs...)
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		} else {
			fmt.Fprintln(out, "database: ok")
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
