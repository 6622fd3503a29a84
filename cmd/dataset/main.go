package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "dataset",
		Short:        "Uniswap V3 event aggregation dataset builder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Aggregate framed event batches into entity tables",
		RunE:  runDataset,
	}

	runCmd.Flags().String("in", "", "input framed batch file")
	runCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (omit to keep results in memory)")
	runCmd.Flags().String("state-file", "./data/state.json", "local state file for progress tracking")
	runCmd.Flags().String("state-name", "default", "state row name when tracking progress in Postgres")
	runCmd.Flags().String("factory", config.DefaultFactoryAddress, "factory contract address")
	runCmd.Flags().String("position-manager", config.DefaultPositionManager, "position manager contract address")
	runCmd.Flags().String("metrics-addr", "", "Prometheus listen address (empty disables)")
	runCmd.Flags().Int("max-sweep-steps", 100, "tick sweep step cap per swap")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts for contract reads")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a framed batch file from JSONL event descriptions",
		RunE:  runEncode,
	}

	encodeCmd.Flags().String("in", "", "input events JSONL")
	encodeCmd.Flags().String("out", "./data/events.bin", "output framed batch file")
	encodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(encodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
