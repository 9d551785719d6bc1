package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gophersignal/internal/metrics"

	"github.com/spf13/cobra"
)

var fetchSummarize bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Debug: fetch one article and print its extracted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, err := newRenderer(ctx, cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		text := newFetcher(r, cfg, nil, metrics.Nop{}).Fetch(ctx, args[0])
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, text)
		fmt.Fprintf(out, "\n-- %d chars\n", len([]rune(text)))
		if !fetchSummarize {
			return nil
		}

		s, err := newSummarizer(cfg, metrics.Nop{})
		if err != nil {
			return err
		}
		summary, err := s.Summarize(ctx, args[0], text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n-- summary (%s)\n%s\n", s.Model(), summary)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchSummarize, "summarize", false, "also summarize the extracted text")
	rootCmd.AddCommand(fetchCmd)
}
