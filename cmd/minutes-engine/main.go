// Package main is the entry point for the minutes-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ballston-civic/minutes-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the Anthropic API key: explicit flag value, then the
// environment (which .env.local feeds), then the .secrets/ directory.
func apiKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		return v
	}
	return loadedSecrets["anthropic-api-key"]
}

// rootCmd is the base command for the minutes-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "minutes-engine",
	Short: "Extract voting records from municipal meeting minutes",
	Long: `minutes-engine turns Village of Ballston Spa Board of Trustees meeting
minutes into structured voting records. Each pipeline stage is a subcommand:
scrape finds PDF links on event pages, download fetches them, votes extracts
the flat voting-record CSV, scan produces the front-end's per-member vote
JSON, process converts whole PDFs to structured JSON, validate reports text
extraction quality, and records maintains a searchable SQLite index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.LoadEnvFile(".env.local"); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./minutes-engine.yaml or ~/.config/minutes-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("minutes-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "minutes-engine"))
		}
	}

	viper.SetEnvPrefix("MINUTES_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("docs_dir", filepath.Join("documents", "board_of_trustees_documents"))
	viper.SetDefault("public_dir", "public")
	viper.SetDefault("model", "claude-sonnet-4-20250514")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
