// Package cli implements the gateway command line: serve, migrate and seed.
package cli

import (
	"fmt"
	"os"

	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tutor-gateway",
	Short: "AI tutoring gateway with per-tier token budgets",
	Long: `tutor-gateway serves the tutoring API: doubts, derivations, lessons,
adaptive quizzes and gamification, metering AI usage against each
subscription tier's daily token budget.

Running without a subcommand is the same as "serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Path to the JSON config file")
}

// Execute runs the root command. Called from main.go.
func Execute() {
	// Load env if it exists
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
