package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/pdftext"
	"github.com/ballston-civic/minutes-engine/internal/scan"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Generate per-member vote records for the front-end",
	Long: `Scan analyzes minute PDFs into the per-motion member-vote JSON consumed
by the front-end's Voting History tab: each motion gets one record listing
every board member's position (Aye, No, Absent, or Not Found). By default only
the first 3 minutes files are scanned; raise --limit to cover more.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("docs-dir", "", "directory of downloaded PDFs (default from config)")
	scanCmd.Flags().String("out", "", "output JSON path (default <public_dir>/generated-votes.json)")
	scanCmd.Flags().Int("limit", 3, "maximum number of files to scan")
	scanCmd.Flags().String("model", "", "model identifier (default from config)")
	scanCmd.Flags().Int("max-tokens", 4096, "response token budget")
	scanCmd.Flags().Int("dpi", 0, "OCR rasterization DPI (default 150)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	docsDir, _ := cmd.Flags().GetString("docs-dir")
	if docsDir == "" {
		docsDir = viper.GetString("docs_dir")
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(viper.GetString("public_dir"), "generated-votes.json")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := types.ScanConfig{
		AIConfig: aiConfigFromFlags(cmd),
		DocsDir:  docsDir,
		OutJSON:  out,
		Limit:    limit,
	}

	extractor := pdftext.NewExtractor(ocrConfigFromFlags(cmd))
	analyzer := &scan.ClaudeAnalyzer{Client: newClient(cfg.AIConfig)}

	records, summary, err := scan.Run(context.Background(), cfg, extractor, analyzer, os.Stdout)
	if err != nil {
		return err
	}

	if err := scan.WriteJSON(cfg.OutJSON, records); err != nil {
		return err
	}
	fmt.Printf("\nWrote %d vote record(s) to %s\n", len(records), cfg.OutJSON)

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}
