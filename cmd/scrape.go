package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gophersignal/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeFeed  string
	scrapeDay   string
	scrapePages int
)

// scrapeCmd prints a listing without fetching, summarizing or saving.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Debug: scrape a Hacker News feed and print it as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, err := newRenderer(ctx, cfg)
		if err != nil {
			return err
		}
		defer r.Close()
		s := newScraper(r, cfg)

		var articles []model.Article
		switch {
		case scrapeDay != "":
			day, perr := time.Parse("2006-01-02", scrapeDay)
			if perr != nil {
				return fmt.Errorf("invalid --day: %w", perr)
			}
			articles, err = s.ScrapeFrontForDay(ctx, day)
		case scrapeFeed == "front":
			articles, err = s.ScrapeFront(ctx, scrapePages)
		case scrapeFeed == "top":
			articles, err = s.ScrapeTopStories(ctx, scrapePages)
		default:
			return fmt.Errorf("unknown feed %q (want top or front)", scrapeFeed)
		}
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Rank", "ID", "Title", "Points", "Comments", "Flags"})
		for _, a := range articles {
			t.AppendRow(table.Row{a.Rank, a.HNID, truncate(a.Title, 60), a.Upvotes, a.CommentCount, flags(a)})
		}
		t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d articles", len(articles))})
		t.Render()
		return nil
	},
}

func flags(a model.Article) string {
	s := ""
	if a.Flagged {
		s += "F"
	}
	if a.Dead {
		s += "D"
	}
	if a.Dupe {
		s += "U"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFeed, "feed", "top", "feed to scrape: top or front")
	scrapeCmd.Flags().StringVar(&scrapeDay, "day", "", "scrape the front feed for one day (YYYY-MM-DD)")
	scrapeCmd.Flags().IntVar(&scrapePages, "pages", 1, "page ceiling (0 uses the feed default)")
	rootCmd.AddCommand(scrapeCmd)
}
