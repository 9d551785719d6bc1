package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gophersignal/internal/storage"

	"github.com/spf13/cobra"
)

// markCmd groups point updates on stored articles.
var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark stored articles as dead or duplicate",
}

func markRunE(apply func(*storage.PostgresStore, context.Context, int) error, label string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := storage.OpenPostgres(ctx, cfg.Database.DSN, cfg.Database.MaxContentLength)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", arg)
			}
			if err := apply(store, ctx, id); err != nil {
				return fmt.Errorf("mark %d %s: %w", id, label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d marked %s\n", id, label)
		}
		return nil
	}
}

var markDeadCmd = &cobra.Command{
	Use:   "dead <hn_id>...",
	Short: "Mark articles dead",
	Args:  cobra.MinimumNArgs(1),
	RunE:  markRunE((*storage.PostgresStore).MarkDead, "dead"),
}

var markDupeCmd = &cobra.Command{
	Use:   "dupe <hn_id>...",
	Short: "Mark articles as duplicates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  markRunE((*storage.PostgresStore).MarkDuplicate, "dupe"),
}

func init() {
	markCmd.AddCommand(markDeadCmd, markDupeCmd)
	rootCmd.AddCommand(markCmd)
}
