package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/download"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the PDFs found by scrape",
	Long: `Download reads the scrape results CSV, keeps rows whose event name
matches the filter, and fetches each PDF into the documents directory.
Downloads go through a temp file so interrupted transfers never leave a
truncated PDF behind.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("results", "event-pdfs.csv", "input CSV of PDF links from scrape")
	downloadCmd.Flags().String("docs-dir", "", "directory to save PDFs to (default from config)")
	downloadCmd.Flags().String("event-filter", "Board of Trustees", "keep only rows whose event contains this substring (empty = all)")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	results, _ := cmd.Flags().GetString("results")
	docsDir, _ := cmd.Flags().GetString("docs-dir")
	if docsDir == "" {
		docsDir = viper.GetString("docs_dir")
	}
	eventFilter, _ := cmd.Flags().GetString("event-filter")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		DocsDir:       docsDir,
		EventFilter:   eventFilter,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	summary, err := download.Run(context.Background(), cfg, results, client, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nDownload complete: %d succeeded, %d failed, saved to %s\n",
		summary.Downloaded, summary.Failed, cfg.DocsDir)

	if summary.HasFailures() {
		return fmt.Errorf("%d download(s) failed", summary.Failed)
	}
	return nil
}
