// Package aggregate is the incremental aggregation engine. It decodes
// event batches and folds each event, strictly in encoded order, into the
// pool/token/factory state and the time-bucketed derived records.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/metrics"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/pricing"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/store"
)

// errUnresolvable marks an event whose referenced pool, token or position
// could not be resolved. The event is skipped without mutation; the batch
// continues.
var errUnresolvable = errors.New("unresolvable entity")

// SourceRegistry is told about every newly created pool so the host can
// route that pool's future events into the pipeline.
type SourceRegistry interface {
	RegisterPool(address string)
}

// Config controls engine behavior.
type Config struct {
	// FactoryAddress keys the factory rollup record.
	FactoryAddress string
	// MaxSweepSteps caps the tick-crossing sweep. Zero means the default
	// of 100 steps.
	MaxSweepSteps int
}

const defaultMaxSweepSteps = 100

// Engine folds decoded events into the entity store.
type Engine struct {
	cfg      Config
	store    *store.Memory
	reader   chain.Reader
	registry SourceRegistry
	logger   *zap.Logger
	metrics  *metrics.Set
}

// NewEngine creates an engine over the given working-set store and chain
// reader.
func NewEngine(cfg Config, st *store.Memory, reader chain.Reader, registry SourceRegistry, logger *zap.Logger, set *metrics.Set) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSweepSteps <= 0 {
		cfg.MaxSweepSteps = defaultMaxSweepSteps
	}
	return &Engine{
		cfg:      cfg,
		store:    st,
		reader:   reader,
		registry: registry,
		logger:   logger,
		metrics:  set,
	}
}

// Store exposes the engine's working set for flushing.
func (e *Engine) Store() *store.Memory { return e.store }

// txContext carries the envelope fields shared by every handler in a
// single event's scope.
type txContext struct {
	address   string
	owner     string
	txHash    string
	gasUsed   uint64
	gasPrice  *big.Int
	block     uint64
	timestamp uint64
}

// ProcessBatch decodes one batch and dispatches its events in order,
// returning the highest block number seen. A decode error aborts the batch
// before any mutation; handler-level failures skip the single event and
// keep going.
func (e *Engine) ProcessBatch(ctx context.Context, buf []byte) (uint64, error) {
	evts, err := events.DecodeBatch(buf)
	if err != nil {
		if e.metrics != nil {
			e.metrics.DecodeFailures.Inc()
		}
		return 0, fmt.Errorf("decode batch: %w", err)
	}

	var maxBlock uint64
	for i := range evts {
		ev := &evts[i]
		if ev.BlockNumber > maxBlock {
			maxBlock = ev.BlockNumber
		}
		if err := e.dispatch(ctx, ev); err != nil {
			if e.metrics != nil {
				e.metrics.EventsSkipped.WithLabelValues(ev.Type.String()).Inc()
			}
			if errors.Is(err, errUnresolvable) || errors.Is(err, chain.ErrNotFound) {
				e.logger.Debug("event skipped",
					zap.String("type", ev.Type.String()),
					zap.Uint64("block", ev.BlockNumber),
					zap.Error(err))
			} else {
				e.logger.Warn("event skipped",
					zap.String("type", ev.Type.String()),
					zap.Uint64("block", ev.BlockNumber),
					zap.Error(err))
			}
			continue
		}
		if e.metrics != nil {
			e.metrics.EventsProcessed.WithLabelValues(ev.Type.String()).Inc()
		}
	}

	if e.metrics != nil {
		e.metrics.BatchesProcessed.Inc()
	}
	return maxBlock, nil
}

func (e *Engine) dispatch(ctx context.Context, ev *events.Event) error {
	tc, err := e.buildTxContext(ev)
	if err != nil {
		return err
	}
	if err := e.ensureTransaction(ctx, tc); err != nil {
		return err
	}

	switch payload := ev.Payload.(type) {
	case *events.PoolCreated:
		return e.handlePoolCreated(ctx, tc, payload)
	case *events.Initialize:
		return e.handleInitialize(ctx, tc, payload)
	case *events.Swap:
		return e.handleSwap(ctx, tc, payload)
	case *events.Mint:
		return e.handleMint(ctx, tc, payload)
	case *events.Burn:
		return e.handleBurn(ctx, tc, payload)
	case *events.Flash:
		return e.handleFlash(ctx, tc, payload)
	case *events.IncreaseLiquidity:
		return e.handleIncreaseLiquidity(ctx, tc, payload)
	case *events.DecreaseLiquidity:
		return e.handleDecreaseLiquidity(ctx, tc, payload)
	case *events.Collect:
		return e.handleCollect(ctx, tc, payload)
	case *events.Transfer:
		return e.handleTransfer(ctx, tc, payload)
	default:
		// Unknown discriminants are ignored, not an error.
		return nil
	}
}

func (e *Engine) buildTxContext(ev *events.Event) (txContext, error) {
	timestamp, err := entity.ParseBigInt(ev.BlockTimestamp)
	if err != nil {
		return txContext{}, fmt.Errorf("block timestamp: %w", err)
	}
	gasPrice, err := entity.ParseBigInt(ev.TxGasPrice)
	if err != nil {
		return txContext{}, fmt.Errorf("gas price: %w", err)
	}
	return txContext{
		address:   ev.Address,
		owner:     ev.Owner,
		txHash:    ev.TxHash,
		gasUsed:   ev.TxGasUsed,
		gasPrice:  gasPrice,
		block:     ev.BlockNumber,
		timestamp: timestamp.Uint64(),
	}, nil
}

func (e *Engine) ensureTransaction(ctx context.Context, tc txContext) error {
	if tc.txHash == "" {
		return nil
	}
	if _, ok, err := e.store.Load(ctx, entity.KindTransaction, tc.txHash); err != nil {
		return err
	} else if ok {
		return nil
	}
	tx := entity.NewTransaction(tc.txHash)
	tx.BlockNumber = tc.block
	tx.Timestamp = tc.timestamp
	tx.GasUsed = tc.gasUsed
	tx.GasPrice = tc.gasPrice
	return e.store.Save(ctx, tx)
}

// Entity lookup helpers. Missing pools and tokens are reported as
// errUnresolvable so handlers can skip the event.

func (e *Engine) loadFactory(ctx context.Context) (*entity.Factory, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindFactory, e.cfg.FactoryAddress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return entity.NewFactory(e.cfg.FactoryAddress), nil
	}
	return raw.(*entity.Factory), nil
}

func (e *Engine) loadBundle(ctx context.Context) (*entity.Bundle, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindBundle, entity.BundleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return entity.NewBundle(), nil
	}
	return raw.(*entity.Bundle), nil
}

func (e *Engine) loadPool(ctx context.Context, address string) (*entity.Pool, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindPool, address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("pool %s: %w", address, errUnresolvable)
	}
	return raw.(*entity.Pool), nil
}

func (e *Engine) loadToken(ctx context.Context, address string) (*entity.Token, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindToken, address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("token %s: %w", address, errUnresolvable)
	}
	return raw.(*entity.Token), nil
}

func (e *Engine) loadOrCreateTick(ctx context.Context, tc txContext, pool string, tickIdx int32) (*entity.Tick, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindTick, entity.TickID(pool, tickIdx))
	if err != nil {
		return nil, err
	}
	if ok {
		return raw.(*entity.Tick), nil
	}
	tick := entity.NewTick(pool, tickIdx)
	tick.CreatedAtTimestamp = tc.timestamp
	tick.CreatedAtBlock = tc.block
	return tick, nil
}

// storeSource adapts the engine's store to the pricing oracle's lookup
// interface.
type storeSource struct {
	store *store.Memory
}

func (s storeSource) Pool(ctx context.Context, address string) (*entity.Pool, bool, error) {
	raw, ok, err := s.store.Load(ctx, entity.KindPool, address)
	if err != nil || !ok {
		return nil, false, err
	}
	return raw.(*entity.Pool), true, nil
}

func (s storeSource) Token(ctx context.Context, address string) (*entity.Token, bool, error) {
	raw, ok, err := s.store.Load(ctx, entity.KindToken, address)
	if err != nil || !ok {
		return nil, false, err
	}
	return raw.(*entity.Token), true, nil
}

func (e *Engine) pricingSource() pricing.Source { return storeSource{store: e.store} }
