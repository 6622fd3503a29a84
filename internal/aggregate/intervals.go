package aggregate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

// Interval refresh helpers. Each loads or creates the bucket record for
// the event's timestamp, refreshes the snapshot gauges, saves, and hands
// the record back so handlers can fold in volume deltas and save again.

func (e *Engine) refreshFactoryDayData(ctx context.Context, tc txContext, factory *entity.Factory) (*entity.FactoryDayData, error) {
	fresh := entity.NewFactoryDayData(factory.Address, tc.timestamp)
	record := fresh
	if raw, ok, err := e.store.Load(ctx, entity.KindFactoryDayData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.FactoryDayData)
	}

	record.TVLUSD = factory.TotalValueLockedUSD
	record.TxCount = factory.TxCount
	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *Engine) refreshPoolDayData(ctx context.Context, tc txContext, pool *entity.Pool) (*entity.PoolDayData, error) {
	fresh := entity.NewPoolDayData(pool.Address, tc.timestamp)
	record := fresh
	created := true
	if raw, ok, err := e.store.Load(ctx, entity.KindPoolDayData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.PoolDayData)
		created = false
	}

	price := pool.Token0Price
	if created {
		record.Open = price
		record.High = price
		record.Low = price
	}
	if price.Cmp(record.High) > 0 {
		record.High = price
	}
	if price.Cmp(record.Low) < 0 {
		record.Low = price
	}
	record.Close = price

	record.Liquidity = pool.Liquidity
	record.SqrtPrice = pool.SqrtPrice
	record.Token0Price = pool.Token0Price
	record.Token1Price = pool.Token1Price
	record.Tick = pool.Tick
	record.FeeGrowthGlobal0X128 = pool.FeeGrowthGlobal0X128
	record.FeeGrowthGlobal1X128 = pool.FeeGrowthGlobal1X128
	record.TVLUSD = pool.TotalValueLockedUSD
	record.TxCount++

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *Engine) refreshPoolHourData(ctx context.Context, tc txContext, pool *entity.Pool) (*entity.PoolHourData, error) {
	fresh := entity.NewPoolHourData(pool.Address, tc.timestamp)
	record := fresh
	created := true
	if raw, ok, err := e.store.Load(ctx, entity.KindPoolHourData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.PoolHourData)
		created = false
	}

	price := pool.Token0Price
	if created {
		record.Open = price
		record.High = price
		record.Low = price
	}
	if price.Cmp(record.High) > 0 {
		record.High = price
	}
	if price.Cmp(record.Low) < 0 {
		record.Low = price
	}
	record.Close = price

	record.Liquidity = pool.Liquidity
	record.SqrtPrice = pool.SqrtPrice
	record.Token0Price = pool.Token0Price
	record.Token1Price = pool.Token1Price
	record.Tick = pool.Tick
	record.FeeGrowthGlobal0X128 = pool.FeeGrowthGlobal0X128
	record.FeeGrowthGlobal1X128 = pool.FeeGrowthGlobal1X128
	record.TVLUSD = pool.TotalValueLockedUSD
	record.TxCount++

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *Engine) refreshTokenDayData(ctx context.Context, tc txContext, token *entity.Token, priceUSD decimal.Decimal) (*entity.TokenDayData, error) {
	fresh := entity.NewTokenDayData(token.Address, tc.timestamp)
	record := fresh
	created := true
	if raw, ok, err := e.store.Load(ctx, entity.KindTokenDayData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.TokenDayData)
		created = false
	}

	if created {
		record.Open = priceUSD
		record.High = priceUSD
		record.Low = priceUSD
	}
	if priceUSD.Cmp(record.High) > 0 {
		record.High = priceUSD
	}
	if priceUSD.Cmp(record.Low) < 0 {
		record.Low = priceUSD
	}
	record.Close = priceUSD

	record.PriceUSD = priceUSD
	record.TotalValueLocked = token.TotalValueLocked
	record.TVLUSD = token.TotalValueLockedUSD

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *Engine) refreshTokenHourData(ctx context.Context, tc txContext, token *entity.Token, priceUSD decimal.Decimal) (*entity.TokenHourData, error) {
	fresh := entity.NewTokenHourData(token.Address, tc.timestamp)
	record := fresh
	created := true
	if raw, ok, err := e.store.Load(ctx, entity.KindTokenHourData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.TokenHourData)
		created = false
	}

	if created {
		record.Open = priceUSD
		record.High = priceUSD
		record.Low = priceUSD
	}
	if priceUSD.Cmp(record.High) > 0 {
		record.High = priceUSD
	}
	if priceUSD.Cmp(record.Low) < 0 {
		record.Low = priceUSD
	}
	record.Close = priceUSD

	record.PriceUSD = priceUSD
	record.TotalValueLocked = token.TotalValueLocked
	record.TVLUSD = token.TotalValueLockedUSD

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *Engine) refreshTickDayData(ctx context.Context, tc txContext, tick *entity.Tick) (*entity.TickDayData, error) {
	fresh := entity.NewTickDayData(tick, tc.timestamp)
	record := fresh
	if raw, ok, err := e.store.Load(ctx, entity.KindTickDayData, fresh.EntityID()); err != nil {
		return nil, err
	} else if ok {
		record = raw.(*entity.TickDayData)
	}

	record.LiquidityGross = tick.LiquidityGross
	record.LiquidityNet = tick.LiquidityNet
	record.FeeGrowthOutside0X128 = tick.FeeGrowthOutside0X128
	record.FeeGrowthOutside1X128 = tick.FeeGrowthOutside1X128

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// tokenPriceUSD is the token's USD price derived through the reference
// asset.
func tokenPriceUSD(token *entity.Token, bundle *entity.Bundle) decimal.Decimal {
	return token.DerivedETH.Mul(bundle.EthPriceUSD)
}
