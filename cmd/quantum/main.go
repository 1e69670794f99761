package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	appName = "quantum"
	version = "v1.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Pre-match betting decision engine",
		Version: version,
		Long: `Quantum analyses a football fixture through twelve-vector team DNA,
a friction matrix and seven independent prediction models, then emits a
sized pick or a skip. Every decision is frozen in an immutable snapshot.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (defaults apply when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze HOME AWAY",
		Short: "Analyse one fixture and print the decision",
		Long:  "Run the full pipeline for a single fixture. Odds come from --odds as JSON or from --odds-file.",
		Args:  cobra.ExactArgs(2),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().String("fixture", "", "Fixture identifier (defaults to HOME-vs-AWAY)")
	analyzeCmd.Flags().String("odds", "", `Odds map as JSON, e.g. '{"over_25":1.72,"over_25_close":1.80}'`)
	analyzeCmd.Flags().String("odds-file", "", "Path to a JSON file with the odds map")
	analyzeCmd.Flags().String("referee", "", "Referee name for the arbiter profile")
	analyzeCmd.Flags().Bool("json", false, "Print the decision as JSON instead of text")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve fixture analysis, snapshot settlement, tracker state, health and metrics over HTTP.",
		RunE:  runServe,
	}

	settleCmd := &cobra.Command{
		Use:   "settle SNAPSHOT_ID RESULT PNL",
		Short: "Settle a snapshot with its post-match outcome",
		Long:  "RESULT lists every market that landed, comma separated (e.g. over_25,btts_yes). Each frozen model vote is scored against it to drive the dynamic consensus weights.",
		Args:  cobra.ExactArgs(3),
		RunE:  runSettle,
	}

	rootCmd.AddCommand(analyzeCmd, serveCmd, settleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setLogLevel(flags *pflag.FlagSet) {
	level, _ := flags.GetString("log-level")
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func loadOdds(flags *pflag.FlagSet) (map[string]float64, error) {
	raw, _ := flags.GetString("odds")
	path, _ := flags.GetString("odds-file")

	if raw == "" && path == "" {
		return nil, fmt.Errorf("either --odds or --odds-file is required")
	}
	if raw == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read odds file: %w", err)
		}
		raw = string(data)
	}

	var odds map[string]float64
	if err := json.Unmarshal([]byte(raw), &odds); err != nil {
		return nil, fmt.Errorf("parse odds: %w", err)
	}
	return odds, nil
}
