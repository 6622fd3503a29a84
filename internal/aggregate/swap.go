package aggregate

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/pricing"
)

var (
	two        = decimal.NewFromInt(2)
	oneMillion = decimal.NewFromInt(1_000_000)
)

// handleInitialize records a pool's starting price and tick, then
// refreshes the reference prices that depend on it.
func (e *Engine) handleInitialize(ctx context.Context, tc txContext, payload *events.Initialize) error {
	pool, err := e.loadPool(ctx, tc.address)
	if err != nil {
		return err
	}

	sqrtPrice, err := entity.ParseBigInt(payload.SqrtPrice)
	if err != nil {
		return err
	}
	tick, err := entity.ParseTick(payload.Tick)
	if err != nil {
		return err
	}

	pool.SqrtPrice = sqrtPrice
	pool.Tick = tick
	if err := e.store.Save(ctx, pool); err != nil {
		return err
	}

	bundle, err := e.loadBundle(ctx)
	if err != nil {
		return err
	}
	bundle.EthPriceUSD, err = pricing.EthPriceUSD(ctx, e.pricingSource())
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, bundle); err != nil {
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
	if err := e.refreshDerivedETH(ctx, token0, token1); err != nil {
		return err
	}

	if _, err := e.refreshPoolDayData(ctx, tc, pool); err != nil {
		return err
	}
	_, err = e.refreshPoolHourData(ctx, tc, pool)
	return err
}

// handleSwap folds one swap into the volume, fee, price and TVL state.
//
// The ordering is deliberate: volumes are valued at pre-swap prices, the
// factory's TVL contribution of this pool is subtracted up front, and only
// after the raw pool state and all reference prices are refreshed are the
// USD-denominated quantities recomputed and added back.
func (e *Engine) handleSwap(ctx context.Context, tc txContext, payload *events.Swap) error {
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

	rawAmount0, err := entity.ParseBigInt(payload.Amount0)
	if err != nil {
		return err
	}
	rawAmount1, err := entity.ParseBigInt(payload.Amount1)
	if err != nil {
		return err
	}
	amount0 := entity.ToDecimal(rawAmount0, token0.Decimals)
	amount1 := entity.ToDecimal(rawAmount1, token1.Decimals)
	absAmount0 := amount0.Abs()
	absAmount1 := amount1.Abs()

	// Volumes are valued at the prices in force before this swap.
	price0USD := tokenPriceUSD(token0, bundle)
	price1USD := tokenPriceUSD(token1, bundle)
	trackedUSD := trackedVolumeUSD(absAmount0, price0USD, token0.Address, absAmount1, price1USD, token1.Address)
	untrackedUSD := absAmount0.Mul(price0USD).Add(absAmount1.Mul(price1USD)).Div(two)
	trackedETH := safeDiv(trackedUSD, bundle.EthPriceUSD)

	feeTier := decimal.New(int64(pool.FeeTier), 0)
	feesUSD := trackedUSD.Mul(feeTier).Div(oneMillion)
	feesETH := trackedETH.Mul(feeTier).Div(oneMillion)

	factory.TxCount++
	factory.TotalVolumeETH = factory.TotalVolumeETH.Add(trackedETH)
	factory.TotalVolumeUSD = factory.TotalVolumeUSD.Add(trackedUSD)
	factory.UntrackedVolumeUSD = factory.UntrackedVolumeUSD.Add(untrackedUSD)
	factory.TotalFeesETH = factory.TotalFeesETH.Add(feesETH)
	factory.TotalFeesUSD = factory.TotalFeesUSD.Add(feesUSD)

	// Reset: remove this pool's stale contribution before recomputing.
	factory.TotalValueLockedETH = factory.TotalValueLockedETH.Sub(pool.TotalValueLockedETH)

	oldTick := pool.Tick

	pool.VolumeToken0 = pool.VolumeToken0.Add(absAmount0)
	pool.VolumeToken1 = pool.VolumeToken1.Add(absAmount1)
	pool.VolumeUSD = pool.VolumeUSD.Add(trackedUSD)
	pool.UntrackedVolumeUSD = pool.UntrackedVolumeUSD.Add(untrackedUSD)
	pool.FeesUSD = pool.FeesUSD.Add(feesUSD)
	pool.TxCount++

	// Overwrite live state with the event's post-swap values.
	pool.Liquidity, err = entity.ParseBigInt(payload.Liquidity)
	if err != nil {
		return err
	}
	pool.SqrtPrice, err = entity.ParseBigInt(payload.SqrtPrice)
	if err != nil {
		return err
	}
	pool.Tick, err = entity.ParseTick(payload.Tick)
	if err != nil {
		return err
	}

	token0.Volume = token0.Volume.Add(absAmount0)
	token0.VolumeUSD = token0.VolumeUSD.Add(trackedUSD)
	token0.UntrackedVolumeUSD = token0.UntrackedVolumeUSD.Add(untrackedUSD)
	token0.FeesUSD = token0.FeesUSD.Add(feesUSD)
	token0.TxCount++
	token0.TotalValueLocked = token0.TotalValueLocked.Add(amount0)

	token1.Volume = token1.Volume.Add(absAmount1)
	token1.VolumeUSD = token1.VolumeUSD.Add(trackedUSD)
	token1.UntrackedVolumeUSD = token1.UntrackedVolumeUSD.Add(untrackedUSD)
	token1.FeesUSD = token1.FeesUSD.Add(feesUSD)
	token1.TxCount++
	token1.TotalValueLocked = token1.TotalValueLocked.Add(amount1)

	pool.TotalValueLockedToken0 = pool.TotalValueLockedToken0.Add(amount0)
	pool.TotalValueLockedToken1 = pool.TotalValueLockedToken1.Add(amount1)

	// Raw state first, then price refresh, so the new prices see the
	// post-swap pool.
	pool.Token0Price, pool.Token1Price = pricing.SqrtPriceX96ToTokenPrices(pool.SqrtPrice, token0.Decimals, token1.Decimals)
	e.refreshPoolFeeGrowth(ctx, pool)
	if err := e.store.Save(ctx, pool); err != nil {
		return err
	}

	bundle.EthPriceUSD, err = pricing.EthPriceUSD(ctx, e.pricingSource())
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, bundle); err != nil {
		return err
	}
	if err := e.refreshDerivedETH(ctx, token0, token1); err != nil {
		return err
	}

	// Recompute: USD-denominated quantities from the refreshed prices.
	pool.TotalValueLockedETH = pool.TotalValueLockedToken0.Mul(token0.DerivedETH).
		Add(pool.TotalValueLockedToken1.Mul(token1.DerivedETH))
	pool.TotalValueLockedUSD = pool.TotalValueLockedETH.Mul(bundle.EthPriceUSD)
	factory.TotalValueLockedETH = factory.TotalValueLockedETH.Add(pool.TotalValueLockedETH)
	factory.TotalValueLockedUSD = factory.TotalValueLockedETH.Mul(bundle.EthPriceUSD)
	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(tokenPriceUSD(token0, bundle))
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(tokenPriceUSD(token1, bundle))

	if err := e.store.Save(ctx, pool); err != nil {
		return err
	}
	if err := e.store.Save(ctx, factory); err != nil {
		return err
	}
	if err := e.store.Save(ctx, token0); err != nil {
		return err
	}
	if err := e.store.Save(ctx, token1); err != nil {
		return err
	}

	factoryDay, err := e.refreshFactoryDayData(ctx, tc, factory)
	if err != nil {
		return err
	}
	factoryDay.VolumeETH = factoryDay.VolumeETH.Add(trackedETH)
	factoryDay.VolumeUSD = factoryDay.VolumeUSD.Add(trackedUSD)
	factoryDay.VolumeUSDUntracked = factoryDay.VolumeUSDUntracked.Add(untrackedUSD)
	factoryDay.FeesUSD = factoryDay.FeesUSD.Add(feesUSD)
	if err := e.store.Save(ctx, factoryDay); err != nil {
		return err
	}

	poolDay, err := e.refreshPoolDayData(ctx, tc, pool)
	if err != nil {
		return err
	}
	poolDay.VolumeToken0 = poolDay.VolumeToken0.Add(absAmount0)
	poolDay.VolumeToken1 = poolDay.VolumeToken1.Add(absAmount1)
	poolDay.VolumeUSD = poolDay.VolumeUSD.Add(trackedUSD)
	poolDay.FeesUSD = poolDay.FeesUSD.Add(feesUSD)
	if err := e.store.Save(ctx, poolDay); err != nil {
		return err
	}

	poolHour, err := e.refreshPoolHourData(ctx, tc, pool)
	if err != nil {
		return err
	}
	poolHour.VolumeToken0 = poolHour.VolumeToken0.Add(absAmount0)
	poolHour.VolumeToken1 = poolHour.VolumeToken1.Add(absAmount1)
	poolHour.VolumeUSD = poolHour.VolumeUSD.Add(trackedUSD)
	poolHour.FeesUSD = poolHour.FeesUSD.Add(feesUSD)
	if err := e.store.Save(ctx, poolHour); err != nil {
		return err
	}

	for _, tk := range []struct {
		token  *entity.Token
		amount decimal.Decimal
	}{{token0, absAmount0}, {token1, absAmount1}} {
		priceUSD := tokenPriceUSD(tk.token, bundle)
		day, err := e.refreshTokenDayData(ctx, tc, tk.token, priceUSD)
		if err != nil {
			return err
		}
		day.Volume = day.Volume.Add(tk.amount)
		day.VolumeUSD = day.VolumeUSD.Add(trackedUSD)
		day.UntrackedVolumeUSD = day.UntrackedVolumeUSD.Add(untrackedUSD)
		day.FeesUSD = day.FeesUSD.Add(feesUSD)
		if err := e.store.Save(ctx, day); err != nil {
			return err
		}

		hour, err := e.refreshTokenHourData(ctx, tc, tk.token, priceUSD)
		if err != nil {
			return err
		}
		hour.Volume = hour.Volume.Add(tk.amount)
		hour.VolumeUSD = hour.VolumeUSD.Add(trackedUSD)
		hour.UntrackedVolumeUSD = hour.UntrackedVolumeUSD.Add(untrackedUSD)
		hour.FeesUSD = hour.FeesUSD.Add(feesUSD)
		if err := e.store.Save(ctx, hour); err != nil {
			return err
		}
	}

	swept, truncated, err := e.sweepTicks(ctx, tc, pool, oldTick, pool.Tick)
	if err != nil {
		return err
	}
	if truncated {
		if e.metrics != nil {
			e.metrics.SweepTruncations.Inc()
		}
		e.logger.Debug("tick sweep truncated",
			zap.String("pool", pool.Address),
			zap.Int32("old_tick", oldTick),
			zap.Int32("new_tick", pool.Tick))
	} else if swept > 0 {
		e.logger.Debug("tick sweep",
			zap.String("pool", pool.Address),
			zap.Int("refreshed", swept))
	}

	return nil
}

// sweepTicks refreshes the fee-growth-outside accumulators of every
// boundary-aligned tick between oldTick and newTick, plus newTick itself
// when it is aligned. A jump wider than the step cap abandons the sweep
// and reports truncation instead of refreshing anything in between.
func (e *Engine) sweepTicks(ctx context.Context, tc txContext, pool *entity.Pool, oldTick, newTick int32) (int, bool, error) {
	spacing := pool.TickSpacing
	if spacing <= 0 {
		return 0, false, nil
	}

	refreshed := 0
	if mod(newTick, spacing) == 0 {
		if err := e.refreshTickFeeVars(ctx, tc, pool.Address, newTick); err != nil {
			return refreshed, false, err
		}
		refreshed++
	}
	if oldTick == newTick {
		return refreshed, false, nil
	}

	steps := abs32(newTick-oldTick) / spacing
	if int(steps) > e.cfg.MaxSweepSteps {
		return refreshed, true, nil
	}

	if newTick > oldTick {
		first := oldTick + spacing - mod(oldTick, spacing)
		for i := first; i <= newTick; i += spacing {
			if i == newTick {
				// Already refreshed above when aligned.
				continue
			}
			if err := e.refreshTickFeeVars(ctx, tc, pool.Address, i); err != nil {
				return refreshed, false, err
			}
			refreshed++
		}
	} else {
		first := oldTick - mod(oldTick, spacing)
		for i := first; i >= newTick; i -= spacing {
			if i == newTick {
				continue
			}
			if err := e.refreshTickFeeVars(ctx, tc, pool.Address, i); err != nil {
				return refreshed, false, err
			}
			refreshed++
		}
	}
	return refreshed, false, nil
}

// refreshTickFeeVars re-reads one tick's fee-growth-outside accumulators
// from the contract. Ticks never observed through a mint are skipped; a
// revert skips the refresh only.
func (e *Engine) refreshTickFeeVars(ctx context.Context, tc txContext, pool string, tickIdx int32) error {
	raw, ok, err := e.store.Load(ctx, entity.KindTick, entity.TickID(pool, tickIdx))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	tick := raw.(*entity.Tick)

	growth, err := e.reader.TickFeeGrowthOutside(ctx, pool, tickIdx)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			if e.metrics != nil {
				e.metrics.ChainNotFound.Inc()
			}
			return nil
		}
		return err
	}
	tick.FeeGrowthOutside0X128 = growth.FeeGrowthOutside0X128
	tick.FeeGrowthOutside1X128 = growth.FeeGrowthOutside1X128
	if err := e.store.Save(ctx, tick); err != nil {
		return err
	}
	_, err = e.refreshTickDayData(ctx, tc, tick)
	return err
}

// refreshPoolFeeGrowth overwrites the pool's fee-growth-global
// accumulators from the authoritative contract state. A revert leaves the
// existing values in place.
func (e *Engine) refreshPoolFeeGrowth(ctx context.Context, pool *entity.Pool) {
	globals, err := e.reader.FeeGrowthGlobals(ctx, pool.Address)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) && e.metrics != nil {
			e.metrics.ChainNotFound.Inc()
		}
		return
	}
	pool.FeeGrowthGlobal0X128 = globals.FeeGrowthGlobal0X128
	pool.FeeGrowthGlobal1X128 = globals.FeeGrowthGlobal1X128
}

// refreshDerivedETH recomputes and saves both tokens' reference-asset
// prices.
func (e *Engine) refreshDerivedETH(ctx context.Context, tokens ...*entity.Token) error {
	src := e.pricingSource()
	for _, token := range tokens {
		derived, err := pricing.FindEthPerToken(ctx, src, token)
		if err != nil {
			return err
		}
		token.DerivedETH = derived
		if err := e.store.Save(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

// trackedVolumeUSD values a swap once across its two legs: both sides
// whitelisted counts each leg at half weight, a single whitelisted side
// carries the full estimate alone, and an unpriceable pair contributes
// nothing.
func trackedVolumeUSD(absAmount0, price0USD decimal.Decimal, token0 string, absAmount1, price1USD decimal.Decimal, token1 string) decimal.Decimal {
	wl0 := pricing.IsWhitelisted(token0)
	wl1 := pricing.IsWhitelisted(token1)
	switch {
	case wl0 && wl1:
		return absAmount0.Mul(price0USD).Add(absAmount1.Mul(price1USD)).Div(two)
	case wl0:
		return absAmount0.Mul(price0USD)
	case wl1:
		return absAmount1.Mul(price1USD)
	default:
		return decimal.Zero
	}
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// mod is the non-negative remainder, so downward sweeps align correctly
// for negative ticks.
func mod(v, m int32) int32 {
	return ((v % m) + m) % m
}
