package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gophersignal/worker"

	"github.com/spf13/cobra"
)

var serveRunOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run batches on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := worker.ParseSchedule(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule.cron %q: %w", cfg.Schedule.Cron, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("serve: received signal, shutting down", "signal", s.String())
			cancel()
		}()

		p, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		sched := &worker.Scheduler{
			Runner:     p.workflow,
			Spec:       cfg.Schedule.Cron,
			RunOnStart: serveRunOnStart,
			AfterRun: func(ctx context.Context, _ error) {
				p.pushMetrics(context.WithoutCancel(ctx), cfg)
			},
		}
		return worker.NewManager(sched).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunOnStart, "now", false, "also run a batch immediately")
	rootCmd.AddCommand(serveCmd)
}
