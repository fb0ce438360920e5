package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/pdftext"
	"github.com/ballston-civic/minutes-engine/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report how much text each PDF yields",
	Long: `Validate probes every downloaded PDF with both extraction methods
(embedded text layer and OCR) and reports character counts per file, so the
operator knows whether the vote pipelines will see usable input before
spending API calls. Optionally writes the full report as YAML.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("docs-dir", "", "directory of downloaded PDFs (default from config)")
	validateCmd.Flags().Int("limit", 0, "maximum number of files to test (0 = all)")
	validateCmd.Flags().String("report", "", "write the full report to this YAML file")
	validateCmd.Flags().Int("dpi", 0, "OCR rasterization DPI (default 150)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	docsDir, _ := cmd.Flags().GetString("docs-dir")
	if docsDir == "" {
		docsDir = viper.GetString("docs_dir")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	reportPath, _ := cmd.Flags().GetString("report")

	extractor := pdftext.NewExtractor(ocrConfigFromFlags(cmd))
	probes := validate.Probes{
		Native:       extractor.TextLayer,
		OCRAvailable: extractor.OCR().Available,
		OCR:          extractor.OCR().Recognize,
	}

	report, err := validate.Run(context.Background(), docsDir, limit, probes, os.Stdout)
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := validate.WriteYAML(reportPath, report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}
	return nil
}
