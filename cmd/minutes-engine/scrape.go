package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ballston-civic/minutes-engine/internal/scrape"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "minutes-engine/0.1"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Find PDF links on event pages",
	Long: `Scrape reads an events CSV (event, url, date), fetches each page, and
collects every PDF link it finds into a results CSV for the download stage.
Pages that fail to load are reported and skipped.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("events", "events.csv", "input CSV of event pages (event, url, date)")
	scrapeCmd.Flags().String("out", "event-pdfs.csv", "output CSV of discovered PDF links")
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	events, _ := cmd.Flags().GetString("events")
	out, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		EventsCSV:  events,
		ResultsCSV: out,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	links, summary, err := scrape.Run(context.Background(), cfg, client, os.Stdout)
	if err != nil {
		return err
	}
	if err := scrape.WriteResultsCSV(cfg.ResultsCSV, links); err != nil {
		return err
	}
	fmt.Printf("\nWrote %d PDF link(s) to %s\n", len(links), cfg.ResultsCSV)

	if summary.HasFailures() {
		return fmt.Errorf("%d page(s) failed", summary.Failed)
	}
	return nil
}
