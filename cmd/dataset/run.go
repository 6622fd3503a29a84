package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/aggregate"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/batch"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/config"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/metrics"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/store"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/store/postgres"
)

// logRegistry records newly created pools. The batch files already carry
// every pool's events, so registration is informational here.
type logRegistry struct {
	logger *zap.Logger
}

func (r *logRegistry) RegisterPool(address string) {
	r.logger.Debug("pool registered", zap.String("pool", address))
}

func runDataset(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := chain.NewContractReader(
		chainClient, cfg.PositionManager, cfg.FactoryAddress,
		cfg.MaxRetries, cfg.RetryBackoff, logger,
	)

	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()

		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	var stateStore aggregate.StateStore
	if pgStore != nil {
		stateStore = &aggregate.DBStateStore{Store: pgStore, Name: cfg.StateName}
	} else {
		stateStore = &aggregate.FileStateStore{Path: cfg.StateFile}
	}

	lastBlock, resumed, err := stateStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	set := metrics.New(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr, logger); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	engine := aggregate.NewEngine(aggregate.Config{
		FactoryAddress: cfg.FactoryAddress,
		MaxSweepSteps:  cfg.MaxSweepSteps,
	}, store.NewMemory(), reader, &logRegistry{logger: logger}, logger, set)

	logger.Info("run start",
		zap.String("input", cfg.Input),
		zap.String("rpc", cfg.RPCURL),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("factory", cfg.FactoryAddress),
		zap.Bool("resumed", resumed),
		zap.Uint64("last_block", lastBlock),
	)

	frames, err := batch.OpenReader(cfg.Input)
	if err != nil {
		return err
	}
	defer frames.Close()

	var processed int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		blob, err := frames.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read batch %d: %w", processed, err)
		}

		maxBlock, err := engine.ProcessBatch(ctx, blob)
		if err != nil {
			return fmt.Errorf("process batch %d: %w", processed, err)
		}
		processed++

		if pgStore != nil {
			dirty := engine.Store().DrainDirty()
			if err := pgStore.Flush(ctx, dirty); err != nil {
				return fmt.Errorf("flush batch %d: %w", processed-1, err)
			}
		}

		if maxBlock > lastBlock {
			lastBlock = maxBlock
			if err := stateStore.Save(ctx, lastBlock); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
	}

	logger.Info("run complete",
		zap.Int("batches", processed),
		zap.Uint64("last_block", lastBlock),
	)
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
