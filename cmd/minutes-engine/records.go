package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ballston-civic/minutes-engine/internal/records"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage the voting-records index (ingest, retrieve, export)",
	Long: `Records maintains a local SQLite index of extracted voting records with
full-text search over motion descriptions. Use subcommands to ingest pipeline
outputs, query them, or export the index.`,
}

// --- ingest subcommand ---

var recordsIngestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Load voting-record CSV and generated-votes JSON files into the index",
	Long: `Ingest loads pipeline outputs into the index: .csv files go into the
votes table (FTS-indexed), .json files into the per-member scan records.
Re-ingesting a file replaces its previous rows.`,
	RunE: runRecordsIngest,
}

func runRecordsIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more files to ingest (voting_record.csv, generated-votes.json)")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	failed := 0
	for _, path := range args {
		var err error
		switch {
		case strings.HasSuffix(path, ".csv"):
			_, err = store.IngestCSV(context.Background(), path, os.Stdout)
		case strings.HasSuffix(path, ".json"):
			_, err = store.IngestJSON(context.Background(), path, os.Stdout)
		default:
			err = fmt.Errorf("unsupported file type (want .csv or .json)")
		}
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed %s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", failed)
	}
	return nil
}

// --- retrieve subcommand ---

var recordsRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search stored voting records",
	Long: `Retrieve searches the index with FTS5 full-text search over motion
descriptions, structured filters (date, result, mover), or both.

Use --member to list a board member's vote history from the scan records.`,
	RunE: runRecordsRetrieve,
}

func runRecordsRetrieve(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	member, _ := cmd.Flags().GetString("member")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if member != "" {
		history, err := store.MemberHistory(context.Background(), member)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(history)
		}
		for _, rec := range history {
			fmt.Printf("%-12s  %-7s  %-8s  %s\n", rec.Date, rec.Result, rec.Votes[0].Status, rec.Motion)
		}
		fmt.Printf("\n%d record(s)\n", len(history))
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --date, --result, or --mover")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for _, r := range results {
		motion := r.Row["motion_description"]
		if len(motion) > 60 {
			motion = motion[:57] + "..."
		}
		fmt.Printf("%-12s  %-6s  %-16s  %s\n",
			r.Row["date"], r.Row["section"], r.Row["vote_result"], motion)
	}
	fmt.Printf("\n%d result(s)\n", len(results))
	return nil
}

// --- export subcommand ---

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the stored voting records (or a filtered subset) to
export.yaml or export.json in the index directory. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runRecordsExport,
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*records.Store, error) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return records.NewStore(types.RecordsConfig{IndexDir: indexDir, MaxResults: maxResults})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) records.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	date, _ := cmd.Flags().GetString("date")
	result, _ := cmd.Flags().GetString("result")
	mover, _ := cmd.Flags().GetString("mover")
	limit, _ := cmd.Flags().GetInt("limit")

	return records.QueryOptions{
		Query:      queryText,
		Date:       date,
		Result:     result,
		Mover:      mover,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	recordsCmd.PersistentFlags().String("index-dir", "index", "directory holding the SQLite index")
	recordsCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	// Retrieve flags.
	recordsRetrieveCmd.Flags().String("query", "", "full-text search over motion descriptions")
	recordsRetrieveCmd.Flags().String("date", "", "filter by meeting date (YYYY-MM-DD)")
	recordsRetrieveCmd.Flags().String("result", "", "filter by vote result (e.g. \"ALL AYES\")")
	recordsRetrieveCmd.Flags().String("mover", "", "filter by mover substring")
	recordsRetrieveCmd.Flags().String("member", "", "list a board member's vote history")
	recordsRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	recordsRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	recordsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	recordsExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	recordsExportCmd.Flags().String("date", "", "filter by meeting date for partial export")
	recordsExportCmd.Flags().String("result", "", "filter by vote result for partial export")
	recordsExportCmd.Flags().String("mover", "", "filter by mover substring for partial export")
	recordsExportCmd.Flags().Int("limit", 0, "maximum rows to export (0 = all)")

	// Wire subcommands.
	recordsCmd.AddCommand(recordsIngestCmd)
	recordsCmd.AddCommand(recordsRetrieveCmd)
	recordsCmd.AddCommand(recordsExportCmd)

	rootCmd.AddCommand(recordsCmd)
}
