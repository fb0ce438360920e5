package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/anthropic"
	"github.com/ballston-civic/minutes-engine/internal/pdftext"
	"github.com/ballston-civic/minutes-engine/internal/votes"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

const defaultAPITimeout = 180 * time.Second

var votesCmd = &cobra.Command{
	Use:   "votes",
	Short: "Extract the voting-record CSV from minutes PDFs",
	Long: `Votes locates Board of Trustees minute PDFs, extracts each one's text
(with OCR fallback for scanned documents), sends it to the Messages API with
the vote extraction guide, and writes all normalized rows to the voting-record
CSV plus a public copy for the Voting History tab. Use --all to include every
non-draft PDF, not just minutes-looking filenames.`,
	RunE: runVotes,
}

func init() {
	votesCmd.Flags().String("docs-dir", "", "directory of downloaded PDFs (default from config)")
	votesCmd.Flags().String("out", "", "output CSV path (default <docs-dir>/voting_record.csv)")
	votesCmd.Flags().String("public", "", "public CSV copy (default <public_dir>/voting_record.csv, \"none\" to disable)")
	votesCmd.Flags().String("xlsx", "", "also write an XLSX workbook of the rows")
	votesCmd.Flags().Bool("all", false, "process every non-draft PDF, not just minutes")
	votesCmd.Flags().Int("limit", 0, "maximum number of files to process (0 = no limit)")
	votesCmd.Flags().String("model", "", "model identifier (default from config)")
	votesCmd.Flags().Int("max-tokens", 8192, "response token budget")
	votesCmd.Flags().Int("dpi", 0, "OCR rasterization DPI (default 150)")

	rootCmd.AddCommand(votesCmd)
}

func runVotes(cmd *cobra.Command, args []string) error {
	cfg := votesConfigFromFlags(cmd)

	extractor := pdftext.NewExtractor(ocrConfigFromFlags(cmd))
	backend := &votes.ClaudeBackend{Client: newClient(cfg.AIConfig)}

	rows, summary, err := votes.Run(context.Background(), cfg, extractor, backend, os.Stdout)
	if err != nil {
		return err
	}

	if err := votes.WriteCSV(cfg.OutCSV, rows); err != nil {
		return err
	}
	fmt.Printf("\nWrote %d voting record row(s) to %s\n", len(rows), cfg.OutCSV)

	if cfg.PublicCSV != "" {
		if err := votes.WriteCSV(cfg.PublicCSV, rows); err != nil {
			return err
		}
		fmt.Printf("Copied to %s for Voting History tab.\n", cfg.PublicCSV)
	}
	if cfg.XLSXPath != "" {
		if err := votes.WriteXLSX(cfg.XLSXPath, rows); err != nil {
			return err
		}
		fmt.Printf("Wrote workbook %s\n", cfg.XLSXPath)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}

func votesConfigFromFlags(cmd *cobra.Command) types.VotesConfig {
	docsDir, _ := cmd.Flags().GetString("docs-dir")
	if docsDir == "" {
		docsDir = viper.GetString("docs_dir")
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(docsDir, "voting_record.csv")
	}
	public, _ := cmd.Flags().GetString("public")
	switch public {
	case "":
		public = filepath.Join(viper.GetString("public_dir"), "voting_record.csv")
	case "none":
		public = ""
	}
	xlsx, _ := cmd.Flags().GetString("xlsx")
	includeAll, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")

	return types.VotesConfig{
		AIConfig:   aiConfigFromFlags(cmd),
		DocsDir:    docsDir,
		OutCSV:     out,
		PublicCSV:  public,
		XLSXPath:   xlsx,
		GuidePaths: guidePaths(docsDir, "VOTE_EXTRACTION_GUIDE.md"),
		IncludeAll: includeAll,
		Limit:      limit,
	}
}

// aiConfigFromFlags resolves the shared Messages API settings. The model and
// key flags are optional; config and environment fill the gaps.
func aiConfigFromFlags(cmd *cobra.Command) types.AIConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("model")
	}
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")

	return types.AIConfig{
		Model:     model,
		APIKey:    apiKey(""),
		MaxTokens: maxTokens,
		Timeout:   defaultAPITimeout,
	}
}

func ocrConfigFromFlags(cmd *cobra.Command) types.OCRConfig {
	dpi, _ := cmd.Flags().GetInt("dpi")
	return types.OCRConfig{DPI: dpi}
}

// guidePaths returns the candidate locations for an extraction guide: the
// documents directory first, then the operator's Downloads folder.
func guidePaths(docsDir, name string) []string {
	paths := []string{filepath.Join(docsDir, name)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "Downloads", name))
	}
	return paths
}

// newClient builds a Messages API client from the resolved AI config.
func newClient(cfg types.AIConfig) *anthropic.Client {
	return &anthropic.Client{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     slog.Default(),
	}
}
