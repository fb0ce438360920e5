package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/minutesjson"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert minutes PDFs to per-document structured JSON",
	Long: `Process sends each minutes PDF to the Messages API as a document
attachment with the meeting-minutes extraction guide, and writes the
structured response to <stem>.json. PDFs that already have a JSON output are
skipped, and the run asks for confirmation before spending API calls
(--yes to skip the prompt). Documents above --two-pass-bytes are extracted in
two merged passes so verbatim public comments survive the token budget.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("pdf-dir", "", "directory of minutes PDFs (default <docs_dir>/meeting_minutes/pdf)")
	processCmd.Flags().String("json-dir", "", "output directory (default <docs_dir>/meeting_minutes/json)")
	processCmd.Flags().String("guide", "", "extraction guide path (default md/MEETING_MINUTES_EXTRACTION_GUIDE.md)")
	processCmd.Flags().Int64("two-pass-bytes", 4<<20, "PDF size above which two-pass extraction is used (0 = never)")
	processCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	processCmd.Flags().String("model", "", "model identifier (default from config)")
	processCmd.Flags().Int("max-tokens", 16000, "response token budget")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	docsDir := viper.GetString("docs_dir")
	pdfDir, _ := cmd.Flags().GetString("pdf-dir")
	if pdfDir == "" {
		pdfDir = filepath.Join(docsDir, "meeting_minutes", "pdf")
	}
	jsonDir, _ := cmd.Flags().GetString("json-dir")
	if jsonDir == "" {
		jsonDir = filepath.Join(docsDir, "meeting_minutes", "json")
	}
	guide, _ := cmd.Flags().GetString("guide")
	guides := []string{filepath.Join("md", "MEETING_MINUTES_EXTRACTION_GUIDE.md")}
	if guide != "" {
		guides = []string{guide}
	}
	twoPassBytes, _ := cmd.Flags().GetInt64("two-pass-bytes")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	cfg := types.ProcessConfig{
		AIConfig:     aiConfigFromFlags(cmd),
		PDFDir:       pdfDir,
		JSONDir:      jsonDir,
		GuidePaths:   guides,
		TwoPassBytes: twoPassBytes,
		AssumeYes:    assumeYes,
	}

	pending, _, err := minutesjson.Pending(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No PDFs to process (all have matching JSON files)")
		return nil
	}

	fmt.Printf("\nFound %d PDF(s) to process:\n", len(pending))
	for _, name := range pending {
		fmt.Printf("  %s\n", name)
	}
	if !minutesjson.Confirm(cfg, len(pending), os.Stdin, os.Stdout) {
		fmt.Println("Cancelled.")
		return nil
	}

	backend := &minutesjson.ClaudeBackend{Client: newClient(cfg.AIConfig)}
	summary, err := minutesjson.Run(context.Background(), cfg, backend, pending, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nProcessing complete: %d successful, %d failed, JSON saved to %s\n",
		summary.Successful, summary.Failed, cfg.JSONDir)
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}
