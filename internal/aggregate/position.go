package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
)

func (e *Engine) handleIncreaseLiquidity(ctx context.Context, tc txContext, payload *events.IncreaseLiquidity) error {
	position, err := e.loadOrCreatePosition(ctx, payload.TokenID)
	if err != nil {
		return err
	}
	token0, err := e.loadToken(ctx, position.Token0)
	if err != nil {
		return err
	}
	token1, err := e.loadToken(ctx, position.Token1)
	if err != nil {
		return err
	}

	liquidity, err := entity.ParseBigInt(payload.Liquidity)
	if err != nil {
		return err
	}
	amount0, amount1, err := adjustedAmounts(payload.Amount0, payload.Amount1, token0, token1)
	if err != nil {
		return err
	}

	position.Liquidity = new(big.Int).Add(position.Liquidity, liquidity)
	position.DepositedToken0 = position.DepositedToken0.Add(amount0)
	position.DepositedToken1 = position.DepositedToken1.Add(amount1)

	e.refreshFeeGrowthInside(ctx, position)
	return e.savePositionWithSnapshot(ctx, tc, position)
}

func (e *Engine) handleDecreaseLiquidity(ctx context.Context, tc txContext, payload *events.DecreaseLiquidity) error {
	position, err := e.loadOrCreatePosition(ctx, payload.TokenID)
	if err != nil {
		return err
	}
	token0, err := e.loadToken(ctx, position.Token0)
	if err != nil {
		return err
	}
	token1, err := e.loadToken(ctx, position.Token1)
	if err != nil {
		return err
	}

	liquidity, err := entity.ParseBigInt(payload.Liquidity)
	if err != nil {
		return err
	}
	amount0, amount1, err := adjustedAmounts(payload.Amount0, payload.Amount1, token0, token1)
	if err != nil {
		return err
	}

	position.Liquidity = new(big.Int).Sub(position.Liquidity, liquidity)
	position.WithdrawnToken0 = position.WithdrawnToken0.Add(amount0)
	position.WithdrawnToken1 = position.WithdrawnToken1.Add(amount1)

	e.refreshFeeGrowthInside(ctx, position)
	return e.savePositionWithSnapshot(ctx, tc, position)
}

func (e *Engine) handleCollect(ctx context.Context, tc txContext, payload *events.Collect) error {
	position, err := e.loadOrCreatePosition(ctx, payload.TokenID)
	if err != nil {
		return err
	}
	token0, err := e.loadToken(ctx, position.Token0)
	if err != nil {
		return err
	}

	rawAmount0, err := entity.ParseBigInt(payload.Amount0)
	if err != nil {
		return err
	}
	amount0 := entity.ToDecimal(rawAmount0, token0.Decimals)

	// Reference behavior: the token1 counter also accumulates the
	// token0-denominated amount. Kept for output compatibility.
	position.CollectedFeesToken0 = position.CollectedFeesToken0.Add(amount0)
	position.CollectedFeesToken1 = position.CollectedFeesToken1.Add(amount0)

	e.refreshFeeGrowthInside(ctx, position)
	return e.savePositionWithSnapshot(ctx, tc, position)
}

func (e *Engine) handleTransfer(ctx context.Context, tc txContext, payload *events.Transfer) error {
	position, err := e.loadOrCreatePosition(ctx, payload.TokenID)
	if err != nil {
		return err
	}
	position.Owner = payload.To
	return e.savePositionWithSnapshot(ctx, tc, position)
}

// loadOrCreatePosition resolves a position by NFT token id, creating it
// from an authoritative position-manager read on first sight. A revert or
// an unknown pool leaves the triggering event unresolvable.
func (e *Engine) loadOrCreatePosition(ctx context.Context, tokenID string) (*entity.Position, error) {
	raw, ok, err := e.store.Load(ctx, entity.KindPosition, tokenID)
	if err != nil {
		return nil, err
	}
	if ok {
		return raw.(*entity.Position), nil
	}

	id, err := entity.ParseBigInt(tokenID)
	if err != nil {
		return nil, err
	}
	info, err := e.reader.Position(ctx, id)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			if e.metrics != nil {
				e.metrics.ChainNotFound.Inc()
			}
			return nil, fmt.Errorf("position %s: %w", tokenID, errUnresolvable)
		}
		return nil, err
	}

	poolAddr, err := e.reader.PoolForPair(ctx, info.Token0, info.Token1, info.FeeTier)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			if e.metrics != nil {
				e.metrics.ChainNotFound.Inc()
			}
			return nil, fmt.Errorf("position %s pool: %w", tokenID, errUnresolvable)
		}
		return nil, err
	}
	if _, ok, err := e.store.Load(ctx, entity.KindPool, poolAddr); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("position %s pool %s: %w", tokenID, poolAddr, errUnresolvable)
	}

	position := entity.NewPosition(tokenID)
	position.Pool = poolAddr
	position.Token0 = info.Token0
	position.Token1 = info.Token1
	position.TickLower = info.TickLower
	position.TickUpper = info.TickUpper
	position.FeeGrowthInside0LastX128 = info.FeeGrowthInside0LastX128
	position.FeeGrowthInside1LastX128 = info.FeeGrowthInside1LastX128
	return position, nil
}

// refreshFeeGrowthInside re-reads the position's fee-growth-inside
// snapshot. A revert leaves the previous snapshot in place while the
// financial counters already applied persist.
func (e *Engine) refreshFeeGrowthInside(ctx context.Context, position *entity.Position) {
	id, err := entity.ParseBigInt(position.TokenID)
	if err != nil {
		return
	}
	info, err := e.reader.Position(ctx, id)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) && e.metrics != nil {
			e.metrics.ChainNotFound.Inc()
		}
		return
	}
	position.FeeGrowthInside0LastX128 = info.FeeGrowthInside0LastX128
	position.FeeGrowthInside1LastX128 = info.FeeGrowthInside1LastX128
}

// savePositionWithSnapshot saves the position and appends the immutable
// per-(position, block) snapshot.
func (e *Engine) savePositionWithSnapshot(ctx context.Context, tc txContext, position *entity.Position) error {
	if err := e.store.Save(ctx, position); err != nil {
		return err
	}
	return e.store.Save(ctx, entity.SnapshotPosition(position, tc.block, tc.timestamp))
}

func adjustedAmounts(amount0, amount1 string, token0, token1 *entity.Token) (decimal.Decimal, decimal.Decimal, error) {
	raw0, err := entity.ParseBigInt(amount0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	raw1, err := entity.ParseBigInt(amount1)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return entity.ToDecimal(raw0, token0.Decimals), entity.ToDecimal(raw1, token1.Decimals), nil
}
