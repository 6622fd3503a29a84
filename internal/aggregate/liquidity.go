package aggregate

import (
	"context"
	"math/big"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
)

func (e *Engine) handleMint(ctx context.Context, tc txContext, payload *events.Mint) error {
	return e.applyLiquidityChange(ctx, tc, liquidityChange{
		tickLower: payload.TickLower,
		tickUpper: payload.TickUpper,
		amount:    payload.Amount,
		amount0:   payload.Amount0,
		amount1:   payload.Amount1,
		sign:      1,
	})
}

func (e *Engine) handleBurn(ctx context.Context, tc txContext, payload *events.Burn) error {
	return e.applyLiquidityChange(ctx, tc, liquidityChange{
		tickLower: payload.TickLower,
		tickUpper: payload.TickUpper,
		amount:    payload.Amount,
		amount0:   payload.Amount0,
		amount1:   payload.Amount1,
		sign:      -1,
	})
}

// handleFlash has no volume or TVL effect; it only re-reads the pool's
// fee-growth-global accumulators, which the flash fee just moved.
func (e *Engine) handleFlash(ctx context.Context, tc txContext, _ *events.Flash) error {
	pool, err := e.loadPool(ctx, tc.address)
	if err != nil {
		return err
	}
	e.refreshPoolFeeGrowth(ctx, pool)
	return e.store.Save(ctx, pool)
}

// liquidityChange is a mint, or a burn when sign is negative.
type liquidityChange struct {
	tickLower string
	tickUpper string
	amount    string
	amount0   string
	amount1   string
	sign      int64
}

// applyLiquidityChange updates locked amounts, counts and the tick ledger
// for a mint or burn. The pool's active liquidity moves only when the
// range straddles the current tick; the boundary ticks are adjusted either
// way.
func (e *Engine) applyLiquidityChange(ctx context.Context, tc txContext, change liquidityChange) error {
	pool, err := e.loadPool(ctx, tc.address)
	if err != nil {
		return err
	}
	factory, err := e.loadFactory(ctx)
	if err != nil {
		return err
	}
	bundle, err := e.loadBundle(ctx)
	if err != nil {
		return err
	}
	token0, err := e.loadToken(ctx, pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.loadToken(ctx, pool.Token1)
	if err != nil {
		return err
	}

	tickLower, err := entity.ParseTick(change.tickLower)
	if err != nil {
		return err
	}
	tickUpper, err := entity.ParseTick(change.tickUpper)
	if err != nil {
		return err
	}
	amount, err := entity.ParseBigInt(change.amount)
	if err != nil {
		return err
	}
	rawAmount0, err := entity.ParseBigInt(change.amount0)
	if err != nil {
		return err
	}
	rawAmount1, err := entity.ParseBigInt(change.amount1)
	if err != nil {
		return err
	}

	signedAmount := new(big.Int).Mul(amount, big.NewInt(change.sign))
	amount0 := entity.ToDecimal(rawAmount0, token0.Decimals)
	amount1 := entity.ToDecimal(rawAmount1, token1.Decimals)
	if change.sign < 0 {
		amount0 = amount0.Neg()
		amount1 = amount1.Neg()
	}

	// Reset: remove this pool's stale contribution before recomputing.
	factory.TotalValueLockedETH = factory.TotalValueLockedETH.Sub(pool.TotalValueLockedETH)
	factory.TxCount++

	token0.TxCount++
	token0.TotalValueLocked = token0.TotalValueLocked.Add(amount0)
	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(tokenPriceUSD(token0, bundle))
	token1.TxCount++
	token1.TotalValueLocked = token1.TotalValueLocked.Add(amount1)
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(tokenPriceUSD(token1, bundle))

	pool.TxCount++
	if tickLower <= pool.Tick && pool.Tick < tickUpper {
		pool.Liquidity = new(big.Int).Add(pool.Liquidity, signedAmount)
	}
	pool.TotalValueLockedToken0 = pool.TotalValueLockedToken0.Add(amount0)
	pool.TotalValueLockedToken1 = pool.TotalValueLockedToken1.Add(amount1)
	pool.TotalValueLockedETH = pool.TotalValueLockedToken0.Mul(token0.DerivedETH).
		Add(pool.TotalValueLockedToken1.Mul(token1.DerivedETH))
	pool.TotalValueLockedUSD = pool.TotalValueLockedETH.Mul(bundle.EthPriceUSD)

	factory.TotalValueLockedETH = factory.TotalValueLockedETH.Add(pool.TotalValueLockedETH)
	factory.TotalValueLockedUSD = factory.TotalValueLockedETH.Mul(bundle.EthPriceUSD)

	lower, err := e.loadOrCreateTick(ctx, tc, pool.Address, tickLower)
	if err != nil {
		return err
	}
	upper, err := e.loadOrCreateTick(ctx, tc, pool.Address, tickUpper)
	if err != nil {
		return err
	}
	lower.LiquidityGross = new(big.Int).Add(lower.LiquidityGross, signedAmount)
	lower.LiquidityNet = new(big.Int).Add(lower.LiquidityNet, signedAmount)
	upper.LiquidityGross = new(big.Int).Add(upper.LiquidityGross, signedAmount)
	upper.LiquidityNet = new(big.Int).Sub(upper.LiquidityNet, signedAmount)

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
	if err := e.store.Save(ctx, lower); err != nil {
		return err
	}
	if err := e.store.Save(ctx, upper); err != nil {
		return err
	}

	if _, err := e.refreshFactoryDayData(ctx, tc, factory); err != nil {
		return err
	}
	if _, err := e.refreshPoolDayData(ctx, tc, pool); err != nil {
		return err
	}
	if _, err := e.refreshPoolHourData(ctx, tc, pool); err != nil {
		return err
	}
	for _, token := range []*entity.Token{token0, token1} {
		priceUSD := tokenPriceUSD(token, bundle)
		if _, err := e.refreshTokenDayData(ctx, tc, token, priceUSD); err != nil {
			return err
		}
		if _, err := e.refreshTokenHourData(ctx, tc, token, priceUSD); err != nil {
			return err
		}
	}

	// Authoritative fee-growth refresh for both boundaries; a revert skips
	// the refresh, never the ledger update above.
	for _, idx := range []int32{tickLower, tickUpper} {
		if err := e.refreshTickFeeVars(ctx, tc, pool.Address, idx); err != nil {
			return err
		}
		raw, ok, err := e.store.Load(ctx, entity.KindTick, entity.TickID(pool.Address, idx))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := e.refreshTickDayData(ctx, tc, raw.(*entity.Tick)); err != nil {
			return err
		}
	}
	return nil
}
