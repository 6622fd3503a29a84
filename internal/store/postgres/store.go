// Package postgres persists aggregated entities. The engine's working set
// stays in memory; dirty entities are flushed here after each batch.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

// Store provides Postgres persistence for aggregated entities.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS factories (
		address TEXT PRIMARY KEY,
		pool_count BIGINT NOT NULL,
		tx_count BIGINT NOT NULL,
		total_volume_eth NUMERIC NOT NULL,
		total_volume_usd NUMERIC NOT NULL,
		untracked_volume_usd NUMERIC NOT NULL,
		total_fees_eth NUMERIC NOT NULL,
		total_fees_usd NUMERIC NOT NULL,
		total_value_locked_eth NUMERIC NOT NULL,
		total_value_locked_usd NUMERIC NOT NULL,
		owner TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bundles (
		id TEXT PRIMARY KEY,
		eth_price_usd NUMERIC NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pools (
		address TEXT PRIMARY KEY,
		created_at_timestamp BIGINT NOT NULL,
		created_at_block BIGINT NOT NULL,
		token0 TEXT NOT NULL,
		token1 TEXT NOT NULL,
		fee_tier BIGINT NOT NULL,
		tick_spacing INTEGER NOT NULL,
		liquidity NUMERIC NOT NULL,
		sqrt_price NUMERIC NOT NULL,
		tick INTEGER NOT NULL,
		token0_price NUMERIC NOT NULL,
		token1_price NUMERIC NOT NULL,
		volume_token0 NUMERIC NOT NULL,
		volume_token1 NUMERIC NOT NULL,
		volume_usd NUMERIC NOT NULL,
		untracked_volume_usd NUMERIC NOT NULL,
		fees_usd NUMERIC NOT NULL,
		tx_count BIGINT NOT NULL,
		tvl_token0 NUMERIC NOT NULL,
		tvl_token1 NUMERIC NOT NULL,
		tvl_eth NUMERIC NOT NULL,
		tvl_usd NUMERIC NOT NULL,
		fee_growth_global0_x128 NUMERIC NOT NULL,
		fee_growth_global1_x128 NUMERIC NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		address TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		decimals SMALLINT NOT NULL,
		total_supply NUMERIC NOT NULL,
		volume NUMERIC NOT NULL,
		volume_usd NUMERIC NOT NULL,
		untracked_volume_usd NUMERIC NOT NULL,
		fees_usd NUMERIC NOT NULL,
		tx_count BIGINT NOT NULL,
		pool_count BIGINT NOT NULL,
		tvl NUMERIC NOT NULL,
		tvl_usd NUMERIC NOT NULL,
		derived_eth NUMERIC NOT NULL,
		whitelist_pools TEXT[] NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ticks (
		pool_address TEXT NOT NULL,
		tick_idx INTEGER NOT NULL,
		liquidity_gross NUMERIC NOT NULL,
		liquidity_net NUMERIC NOT NULL,
		fee_growth_outside0_x128 NUMERIC NOT NULL,
		fee_growth_outside1_x128 NUMERIC NOT NULL,
		created_at_timestamp BIGINT NOT NULL,
		created_at_block BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (pool_address, tick_idx)
	)`,
	`CREATE TABLE IF NOT EXISTS positions (
		token_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		pool_address TEXT NOT NULL,
		token0 TEXT NOT NULL,
		token1 TEXT NOT NULL,
		tick_lower INTEGER NOT NULL,
		tick_upper INTEGER NOT NULL,
		liquidity NUMERIC NOT NULL,
		deposited_token0 NUMERIC NOT NULL,
		deposited_token1 NUMERIC NOT NULL,
		withdrawn_token0 NUMERIC NOT NULL,
		withdrawn_token1 NUMERIC NOT NULL,
		collected_fees_token0 NUMERIC NOT NULL,
		collected_fees_token1 NUMERIC NOT NULL,
		fee_growth_inside0_last_x128 NUMERIC NOT NULL,
		fee_growth_inside1_last_x128 NUMERIC NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS position_snapshots (
		position_id TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		ts BIGINT NOT NULL,
		owner TEXT NOT NULL,
		pool_address TEXT NOT NULL,
		liquidity NUMERIC NOT NULL,
		deposited_token0 NUMERIC NOT NULL,
		deposited_token1 NUMERIC NOT NULL,
		withdrawn_token0 NUMERIC NOT NULL,
		withdrawn_token1 NUMERIC NOT NULL,
		collected_fees_token0 NUMERIC NOT NULL,
		collected_fees_token1 NUMERIC NOT NULL,
		PRIMARY KEY (position_id, block_number)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		hash TEXT PRIMARY KEY,
		block_number BIGINT NOT NULL,
		ts BIGINT NOT NULL,
		gas_used BIGINT NOT NULL,
		gas_price NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS factory_day_data (
		factory_address TEXT NOT NULL,
		date BIGINT NOT NULL,
		volume_eth NUMERIC NOT NULL,
		volume_usd NUMERIC NOT NULL,
		volume_usd_untracked NUMERIC NOT NULL,
		fees_usd NUMERIC NOT NULL,
		tx_count BIGINT NOT NULL,
		tvl_usd NUMERIC NOT NULL,
		PRIMARY KEY (factory_address, date)
	)`,
	`CREATE TABLE IF NOT EXISTS pool_interval_data (
		pool_address TEXT NOT NULL,
		interval_seconds BIGINT NOT NULL,
		period_start BIGINT NOT NULL,
		liquidity NUMERIC NOT NULL,
		sqrt_price NUMERIC NOT NULL,
		token0_price NUMERIC NOT NULL,
		token1_price NUMERIC NOT NULL,
		tick INTEGER NOT NULL,
		tvl_usd NUMERIC NOT NULL,
		volume_token0 NUMERIC NOT NULL,
		volume_token1 NUMERIC NOT NULL,
		volume_usd NUMERIC NOT NULL,
		fees_usd NUMERIC NOT NULL,
		tx_count BIGINT NOT NULL,
		open NUMERIC NOT NULL,
		high NUMERIC NOT NULL,
		low NUMERIC NOT NULL,
		close NUMERIC NOT NULL,
		PRIMARY KEY (pool_address, interval_seconds, period_start)
	)`,
	`CREATE TABLE IF NOT EXISTS token_interval_data (
		token_address TEXT NOT NULL,
		interval_seconds BIGINT NOT NULL,
		period_start BIGINT NOT NULL,
		volume NUMERIC NOT NULL,
		volume_usd NUMERIC NOT NULL,
		untracked_volume_usd NUMERIC NOT NULL,
		fees_usd NUMERIC NOT NULL,
		tvl NUMERIC NOT NULL,
		tvl_usd NUMERIC NOT NULL,
		price_usd NUMERIC NOT NULL,
		open NUMERIC NOT NULL,
		high NUMERIC NOT NULL,
		low NUMERIC NOT NULL,
		close NUMERIC NOT NULL,
		PRIMARY KEY (token_address, interval_seconds, period_start)
	)`,
	`CREATE TABLE IF NOT EXISTS tick_day_data (
		pool_address TEXT NOT NULL,
		tick_idx INTEGER NOT NULL,
		date BIGINT NOT NULL,
		liquidity_gross NUMERIC NOT NULL,
		liquidity_net NUMERIC NOT NULL,
		fee_growth_outside0_x128 NUMERIC NOT NULL,
		fee_growth_outside1_x128 NUMERIC NOT NULL,
		PRIMARY KEY (pool_address, tick_idx, date)
	)`,
	`CREATE TABLE IF NOT EXISTS dataset_state (
		name TEXT PRIMARY KEY,
		last_block BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates all tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Flush upserts a set of dirty entities in a single batch round trip.
func (s *Store) Flush(ctx context.Context, entities []entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ent := range entities {
		switch v := ent.(type) {
		case *entity.Factory:
			queueFactory(batch, v)
		case *entity.Bundle:
			queueBundle(batch, v)
		case *entity.Pool:
			queuePool(batch, v)
		case *entity.Token:
			queueToken(batch, v)
		case *entity.Tick:
			queueTick(batch, v)
		case *entity.Position:
			queuePosition(batch, v)
		case *entity.PositionSnapshot:
			queuePositionSnapshot(batch, v)
		case *entity.Transaction:
			queueTransaction(batch, v)
		case *entity.FactoryDayData:
			queueFactoryDayData(batch, v)
		case *entity.PoolDayData:
			queuePoolInterval(batch, v.PoolAddress, entity.SecondsPerDay, v.Date,
				v.Liquidity.String(), v.SqrtPrice.String(),
				v.Token0Price.String(), v.Token1Price.String(), v.Tick, v.TVLUSD.String(),
				v.VolumeToken0.String(), v.VolumeToken1.String(), v.VolumeUSD.String(),
				v.FeesUSD.String(), v.TxCount,
				v.Open.String(), v.High.String(), v.Low.String(), v.Close.String())
		case *entity.PoolHourData:
			queuePoolInterval(batch, v.PoolAddress, entity.SecondsPerHour, v.PeriodStartUnix,
				v.Liquidity.String(), v.SqrtPrice.String(),
				v.Token0Price.String(), v.Token1Price.String(), v.Tick, v.TVLUSD.String(),
				v.VolumeToken0.String(), v.VolumeToken1.String(), v.VolumeUSD.String(),
				v.FeesUSD.String(), v.TxCount,
				v.Open.String(), v.High.String(), v.Low.String(), v.Close.String())
		case *entity.TokenDayData:
			queueTokenInterval(batch, v.TokenAddress, entity.SecondsPerDay, v.Date,
				v.Volume.String(), v.VolumeUSD.String(), v.UntrackedVolumeUSD.String(),
				v.FeesUSD.String(), v.TotalValueLocked.String(), v.TVLUSD.String(),
				v.PriceUSD.String(),
				v.Open.String(), v.High.String(), v.Low.String(), v.Close.String())
		case *entity.TokenHourData:
			queueTokenInterval(batch, v.TokenAddress, entity.SecondsPerHour, v.PeriodStartUnix,
				v.Volume.String(), v.VolumeUSD.String(), v.UntrackedVolumeUSD.String(),
				v.FeesUSD.String(), v.TotalValueLocked.String(), v.TVLUSD.String(),
				v.PriceUSD.String(),
				v.Open.String(), v.High.String(), v.Low.String(), v.Close.String())
		case *entity.TickDayData:
			queueTickDayData(batch, v)
		default:
			return fmt.Errorf("flush: unsupported entity kind %s", ent.EntityKind())
		}
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("flush %s: %w", entities[i].EntityKind(), err)
		}
	}
	return nil
}

// LoadState returns the last flushed block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM dataset_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts the last flushed block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dataset_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, block)
	return err
}

func queueFactory(batch *pgx.Batch, f *entity.Factory) {
	batch.Queue(`
		INSERT INTO factories (
			address, pool_count, tx_count, total_volume_eth, total_volume_usd,
			untracked_volume_usd, total_fees_eth, total_fees_usd,
			total_value_locked_eth, total_value_locked_usd, owner, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		ON CONFLICT (address) DO UPDATE SET
			pool_count = EXCLUDED.pool_count,
			tx_count = EXCLUDED.tx_count,
			total_volume_eth = EXCLUDED.total_volume_eth,
			total_volume_usd = EXCLUDED.total_volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			total_fees_eth = EXCLUDED.total_fees_eth,
			total_fees_usd = EXCLUDED.total_fees_usd,
			total_value_locked_eth = EXCLUDED.total_value_locked_eth,
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			owner = EXCLUDED.owner,
			updated_at = now()
	`,
		f.Address, int64(f.PoolCount), int64(f.TxCount),
		f.TotalVolumeETH.String(), f.TotalVolumeUSD.String(), f.UntrackedVolumeUSD.String(),
		f.TotalFeesETH.String(), f.TotalFeesUSD.String(),
		f.TotalValueLockedETH.String(), f.TotalValueLockedUSD.String(), f.Owner,
	)
}

func queueBundle(batch *pgx.Batch, b *entity.Bundle) {
	batch.Queue(`
		INSERT INTO bundles (id, eth_price_usd, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET eth_price_usd = EXCLUDED.eth_price_usd, updated_at = now()
	`, b.ID, b.EthPriceUSD.String())
}

func queuePool(batch *pgx.Batch, p *entity.Pool) {
	batch.Queue(`
		INSERT INTO pools (
			address, created_at_timestamp, created_at_block, token0, token1,
			fee_tier, tick_spacing, liquidity, sqrt_price, tick,
			token0_price, token1_price, volume_token0, volume_token1, volume_usd,
			untracked_volume_usd, fees_usd, tx_count,
			tvl_token0, tvl_token1, tvl_eth, tvl_usd,
			fee_growth_global0_x128, fee_growth_global1_x128, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,now())
		ON CONFLICT (address) DO UPDATE SET
			liquidity = EXCLUDED.liquidity,
			sqrt_price = EXCLUDED.sqrt_price,
			tick = EXCLUDED.tick,
			token0_price = EXCLUDED.token0_price,
			token1_price = EXCLUDED.token1_price,
			volume_token0 = EXCLUDED.volume_token0,
			volume_token1 = EXCLUDED.volume_token1,
			volume_usd = EXCLUDED.volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			fees_usd = EXCLUDED.fees_usd,
			tx_count = EXCLUDED.tx_count,
			tvl_token0 = EXCLUDED.tvl_token0,
			tvl_token1 = EXCLUDED.tvl_token1,
			tvl_eth = EXCLUDED.tvl_eth,
			tvl_usd = EXCLUDED.tvl_usd,
			fee_growth_global0_x128 = EXCLUDED.fee_growth_global0_x128,
			fee_growth_global1_x128 = EXCLUDED.fee_growth_global1_x128,
			updated_at = now()
	`,
		p.Address, int64(p.CreatedAtTimestamp), int64(p.CreatedAtBlock),
		p.Token0, p.Token1, int64(p.FeeTier), p.TickSpacing,
		p.Liquidity.String(), p.SqrtPrice.String(), p.Tick,
		p.Token0Price.String(), p.Token1Price.String(),
		p.VolumeToken0.String(), p.VolumeToken1.String(), p.VolumeUSD.String(),
		p.UntrackedVolumeUSD.String(), p.FeesUSD.String(), int64(p.TxCount),
		p.TotalValueLockedToken0.String(), p.TotalValueLockedToken1.String(),
		p.TotalValueLockedETH.String(), p.TotalValueLockedUSD.String(),
		p.FeeGrowthGlobal0X128.String(), p.FeeGrowthGlobal1X128.String(),
	)
}

func queueToken(batch *pgx.Batch, t *entity.Token) {
	batch.Queue(`
		INSERT INTO tokens (
			address, symbol, name, decimals, total_supply,
			volume, volume_usd, untracked_volume_usd, fees_usd,
			tx_count, pool_count, tvl, tvl_usd, derived_eth, whitelist_pools, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
		ON CONFLICT (address) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			total_supply = EXCLUDED.total_supply,
			volume = EXCLUDED.volume,
			volume_usd = EXCLUDED.volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			fees_usd = EXCLUDED.fees_usd,
			tx_count = EXCLUDED.tx_count,
			pool_count = EXCLUDED.pool_count,
			tvl = EXCLUDED.tvl,
			tvl_usd = EXCLUDED.tvl_usd,
			derived_eth = EXCLUDED.derived_eth,
			whitelist_pools = EXCLUDED.whitelist_pools,
			updated_at = now()
	`,
		t.Address, t.Symbol, t.Name, int16(t.Decimals), t.TotalSupply.String(),
		t.Volume.String(), t.VolumeUSD.String(), t.UntrackedVolumeUSD.String(), t.FeesUSD.String(),
		int64(t.TxCount), int64(t.PoolCount),
		t.TotalValueLocked.String(), t.TotalValueLockedUSD.String(), t.DerivedETH.String(),
		t.WhitelistPools,
	)
}

func queueTick(batch *pgx.Batch, t *entity.Tick) {
	batch.Queue(`
		INSERT INTO ticks (
			pool_address, tick_idx, liquidity_gross, liquidity_net,
			fee_growth_outside0_x128, fee_growth_outside1_x128,
			created_at_timestamp, created_at_block, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (pool_address, tick_idx) DO UPDATE SET
			liquidity_gross = EXCLUDED.liquidity_gross,
			liquidity_net = EXCLUDED.liquidity_net,
			fee_growth_outside0_x128 = EXCLUDED.fee_growth_outside0_x128,
			fee_growth_outside1_x128 = EXCLUDED.fee_growth_outside1_x128,
			updated_at = now()
	`,
		t.PoolAddress, t.TickIdx, t.LiquidityGross.String(), t.LiquidityNet.String(),
		t.FeeGrowthOutside0X128.String(), t.FeeGrowthOutside1X128.String(),
		int64(t.CreatedAtTimestamp), int64(t.CreatedAtBlock),
	)
}

func queuePosition(batch *pgx.Batch, p *entity.Position) {
	batch.Queue(`
		INSERT INTO positions (
			token_id, owner, pool_address, token0, token1, tick_lower, tick_upper,
			liquidity, deposited_token0, deposited_token1,
			withdrawn_token0, withdrawn_token1,
			collected_fees_token0, collected_fees_token1,
			fee_growth_inside0_last_x128, fee_growth_inside1_last_x128, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now())
		ON CONFLICT (token_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			liquidity = EXCLUDED.liquidity,
			deposited_token0 = EXCLUDED.deposited_token0,
			deposited_token1 = EXCLUDED.deposited_token1,
			withdrawn_token0 = EXCLUDED.withdrawn_token0,
			withdrawn_token1 = EXCLUDED.withdrawn_token1,
			collected_fees_token0 = EXCLUDED.collected_fees_token0,
			collected_fees_token1 = EXCLUDED.collected_fees_token1,
			fee_growth_inside0_last_x128 = EXCLUDED.fee_growth_inside0_last_x128,
			fee_growth_inside1_last_x128 = EXCLUDED.fee_growth_inside1_last_x128,
			updated_at = now()
	`,
		p.TokenID, p.Owner, p.Pool, p.Token0, p.Token1, p.TickLower, p.TickUpper,
		p.Liquidity.String(), p.DepositedToken0.String(), p.DepositedToken1.String(),
		p.WithdrawnToken0.String(), p.WithdrawnToken1.String(),
		p.CollectedFeesToken0.String(), p.CollectedFeesToken1.String(),
		p.FeeGrowthInside0LastX128.String(), p.FeeGrowthInside1LastX128.String(),
	)
}

func queuePositionSnapshot(batch *pgx.Batch, s *entity.PositionSnapshot) {
	batch.Queue(`
		INSERT INTO position_snapshots (
			position_id, block_number, ts, owner, pool_address, liquidity,
			deposited_token0, deposited_token1, withdrawn_token0, withdrawn_token1,
			collected_fees_token0, collected_fees_token1
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (position_id, block_number) DO UPDATE SET
			owner = EXCLUDED.owner,
			liquidity = EXCLUDED.liquidity,
			deposited_token0 = EXCLUDED.deposited_token0,
			deposited_token1 = EXCLUDED.deposited_token1,
			withdrawn_token0 = EXCLUDED.withdrawn_token0,
			withdrawn_token1 = EXCLUDED.withdrawn_token1,
			collected_fees_token0 = EXCLUDED.collected_fees_token0,
			collected_fees_token1 = EXCLUDED.collected_fees_token1
	`,
		s.PositionID, int64(s.BlockNumber), int64(s.Timestamp), s.Owner, s.Pool,
		s.Liquidity.String(),
		s.DepositedToken0.String(), s.DepositedToken1.String(),
		s.WithdrawnToken0.String(), s.WithdrawnToken1.String(),
		s.CollectedFeesToken0.String(), s.CollectedFeesToken1.String(),
	)
}

func queueTransaction(batch *pgx.Batch, t *entity.Transaction) {
	batch.Queue(`
		INSERT INTO transactions (hash, block_number, ts, gas_used, gas_price)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (hash) DO NOTHING
	`, t.Hash, int64(t.BlockNumber), int64(t.Timestamp), int64(t.GasUsed), t.GasPrice.String())
}

func queueFactoryDayData(batch *pgx.Batch, d *entity.FactoryDayData) {
	batch.Queue(`
		INSERT INTO factory_day_data (
			factory_address, date, volume_eth, volume_usd, volume_usd_untracked,
			fees_usd, tx_count, tvl_usd
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (factory_address, date) DO UPDATE SET
			volume_eth = EXCLUDED.volume_eth,
			volume_usd = EXCLUDED.volume_usd,
			volume_usd_untracked = EXCLUDED.volume_usd_untracked,
			fees_usd = EXCLUDED.fees_usd,
			tx_count = EXCLUDED.tx_count,
			tvl_usd = EXCLUDED.tvl_usd
	`,
		d.FactoryAddress, int64(d.Date), d.VolumeETH.String(), d.VolumeUSD.String(),
		d.VolumeUSDUntracked.String(), d.FeesUSD.String(), int64(d.TxCount), d.TVLUSD.String(),
	)
}

func queuePoolInterval(batch *pgx.Batch, pool string, interval int, periodStart uint64,
	liquidity, sqrtPrice, token0Price, token1Price string, tick int32, tvlUSD,
	volumeToken0, volumeToken1, volumeUSD, feesUSD string, txCount uint64,
	open, high, low, closing string) {
	batch.Queue(`
		INSERT INTO pool_interval_data (
			pool_address, interval_seconds, period_start, liquidity, sqrt_price,
			token0_price, token1_price, tick, tvl_usd,
			volume_token0, volume_token1, volume_usd, fees_usd, tx_count,
			open, high, low, close
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (pool_address, interval_seconds, period_start) DO UPDATE SET
			liquidity = EXCLUDED.liquidity,
			sqrt_price = EXCLUDED.sqrt_price,
			token0_price = EXCLUDED.token0_price,
			token1_price = EXCLUDED.token1_price,
			tick = EXCLUDED.tick,
			tvl_usd = EXCLUDED.tvl_usd,
			volume_token0 = EXCLUDED.volume_token0,
			volume_token1 = EXCLUDED.volume_token1,
			volume_usd = EXCLUDED.volume_usd,
			fees_usd = EXCLUDED.fees_usd,
			tx_count = EXCLUDED.tx_count,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close
	`,
		pool, int64(interval), int64(periodStart), liquidity, sqrtPrice,
		token0Price, token1Price, tick, tvlUSD,
		volumeToken0, volumeToken1, volumeUSD, feesUSD, int64(txCount),
		open, high, low, closing,
	)
}

func queueTokenInterval(batch *pgx.Batch, token string, interval int, periodStart uint64,
	volume, volumeUSD, untrackedVolumeUSD, feesUSD, tvl, tvlUSD, priceUSD,
	open, high, low, closing string) {
	batch.Queue(`
		INSERT INTO token_interval_data (
			token_address, interval_seconds, period_start,
			volume, volume_usd, untracked_volume_usd, fees_usd,
			tvl, tvl_usd, price_usd, open, high, low, close
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (token_address, interval_seconds, period_start) DO UPDATE SET
			volume = EXCLUDED.volume,
			volume_usd = EXCLUDED.volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			fees_usd = EXCLUDED.fees_usd,
			tvl = EXCLUDED.tvl,
			tvl_usd = EXCLUDED.tvl_usd,
			price_usd = EXCLUDED.price_usd,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close
	`,
		token, int64(interval), int64(periodStart),
		volume, volumeUSD, untrackedVolumeUSD, feesUSD,
		tvl, tvlUSD, priceUSD, open, high, low, closing,
	)
}

func queueTickDayData(batch *pgx.Batch, d *entity.TickDayData) {
	batch.Queue(`
		INSERT INTO tick_day_data (
			pool_address, tick_idx, date, liquidity_gross, liquidity_net,
			fee_growth_outside0_x128, fee_growth_outside1_x128
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (pool_address, tick_idx, date) DO UPDATE SET
			liquidity_gross = EXCLUDED.liquidity_gross,
			liquidity_net = EXCLUDED.liquidity_net,
			fee_growth_outside0_x128 = EXCLUDED.fee_growth_outside0_x128,
			fee_growth_outside1_x128 = EXCLUDED.fee_growth_outside1_x128
	`,
		d.PoolAddress, d.TickIdx, int64(d.Date),
		d.LiquidityGross.String(), d.LiquidityNet.String(),
		d.FeeGrowthOutside0X128.String(), d.FeeGrowthOutside1X128.String(),
	)
}
