package aggregate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/pricing"
)

// handlePoolCreated creates the pool and any missing token records, and
// registers the pool for future event routing. Replaying the event for a
// pool already present is a no-op: aggregates are never re-zeroed and the
// factory's pool count is not doubled.
func (e *Engine) handlePoolCreated(ctx context.Context, tc txContext, payload *events.PoolCreated) error {
	if _, ok, err := e.store.Load(ctx, entity.KindPool, payload.PoolAddress); err != nil {
		return err
	} else if ok {
		e.logger.Debug("pool already known", zap.String("pool", payload.PoolAddress))
		return nil
	}

	factory, err := e.loadFactory(ctx)
	if err != nil {
		return err
	}
	bundle, err := e.loadBundle(ctx)
	if err != nil {
		return err
	}

	token0, err := e.loadOrCreateToken(ctx, payload.Token0)
	if err != nil {
		return err
	}
	token1, err := e.loadOrCreateToken(ctx, payload.Token1)
	if err != nil {
		return err
	}

	pool := entity.NewPool(payload.PoolAddress)
	pool.CreatedAtTimestamp = tc.timestamp
	pool.CreatedAtBlock = tc.block
	pool.Token0 = payload.Token0
	pool.Token1 = payload.Token1
	pool.FeeTier = payload.FeeTier
	pool.TickSpacing = payload.TickSpacing

	// A pool becomes a price-discovery candidate for one side when the
	// other side is a whitelisted intermediary.
	if pricing.IsWhitelisted(payload.Token0) {
		token1.WhitelistPools = append(token1.WhitelistPools, pool.Address)
	}
	if pricing.IsWhitelisted(payload.Token1) {
		token0.WhitelistPools = append(token0.WhitelistPools, pool.Address)
	}

	token0.PoolCount++
	token1.PoolCount++
	factory.PoolCount++
	factory.Owner = tc.owner

	if err := e.store.Save(ctx, token0); err != nil {
		return err
	}
	if err := e.store.Save(ctx, token1); err != nil {
		return err
	}
	if err := e.store.Save(ctx, pool); err != nil {
		return err
	}
	if err := e.store.Save(ctx, factory); err != nil {
		return err
	}
	if err := e.store.Save(ctx, bundle); err != nil {
		return err
	}

	if e.registry != nil {
		e.registry.RegisterPool(pool.Address)
	}
	return nil
}

// loadOrCreateToken resolves a token record, creating it from on-chain
// metadata on first sight. Token creation requires a successful decimals
// lookup; failure aborts the triggering event.
func (e *Engine) loadOrCreateToken(ctx context.Context, address string) (*entity.Token, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindToken, address)
	if err != nil {
		return nil, err
	}
	if ok {
		return raw.(*entity.Token), nil
	}

	meta, err := e.reader.TokenMetadata(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			if e.metrics != nil {
				e.metrics.ChainNotFound.Inc()
			}
			return nil, fmt.Errorf("token %s metadata: %w", address, errUnresolvable)
		}
		return nil, err
	}

	token := entity.NewToken(address)
	token.Symbol = meta.Symbol
	token.Name = meta.Name
	token.Decimals = meta.Decimals
	if meta.TotalSupply != nil {
		token.TotalSupply = meta.TotalSupply
	}
	return token, nil
}
