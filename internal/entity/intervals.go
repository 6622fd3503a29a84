package entity

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Time-bucketed derived records. Each is keyed by (entity, bucket start) and
// accumulates deltas every time a relevant event lands in the bucket.

// DayIndex returns the day bucket index for a unix timestamp.
func DayIndex(timestamp uint64) uint64 {
	return timestamp / SecondsPerDay
}

// HourIndex returns the hour bucket index for a unix timestamp.
func HourIndex(timestamp uint64) uint64 {
	return timestamp / SecondsPerHour
}

func bucketID(id string, index uint64) string {
	return fmt.Sprintf("%s-%d", id, index)
}

// FactoryDayData is the exchange-wide daily rollup.
type FactoryDayData struct {
	FactoryAddress string
	Date           uint64

	VolumeETH          decimal.Decimal
	VolumeUSD          decimal.Decimal
	VolumeUSDUntracked decimal.Decimal
	FeesUSD            decimal.Decimal
	TxCount            uint64
	TVLUSD             decimal.Decimal
}

func NewFactoryDayData(factory string, timestamp uint64) *FactoryDayData {
	return &FactoryDayData{
		FactoryAddress: factory,
		Date:           DayIndex(timestamp) * SecondsPerDay,
	}
}

func (d *FactoryDayData) EntityKind() Kind { return KindFactoryDayData }
func (d *FactoryDayData) EntityID() string {
	return bucketID(d.FactoryAddress, d.Date/SecondsPerDay)
}

func (d *FactoryDayData) Clone() Entity {
	c := *d
	return &c
}

// PoolDayData is the per-pool daily rollup with price OHLC.
type PoolDayData struct {
	PoolAddress string
	Date        uint64

	Liquidity            *big.Int
	SqrtPrice            *big.Int
	Token0Price          decimal.Decimal
	Token1Price          decimal.Decimal
	Tick                 int32
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
	TVLUSD               decimal.Decimal

	VolumeToken0 decimal.Decimal
	VolumeToken1 decimal.Decimal
	VolumeUSD    decimal.Decimal
	FeesUSD      decimal.Decimal
	TxCount      uint64

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

func NewPoolDayData(pool string, timestamp uint64) *PoolDayData {
	return &PoolDayData{
		PoolAddress:          pool,
		Date:                 DayIndex(timestamp) * SecondsPerDay,
		Liquidity:            new(big.Int),
		SqrtPrice:            new(big.Int),
		FeeGrowthGlobal0X128: new(big.Int),
		FeeGrowthGlobal1X128: new(big.Int),
	}
}

func (d *PoolDayData) EntityKind() Kind { return KindPoolDayData }
func (d *PoolDayData) EntityID() string {
	return bucketID(d.PoolAddress, d.Date/SecondsPerDay)
}

func (d *PoolDayData) Clone() Entity {
	c := *d
	c.Liquidity = cloneBig(d.Liquidity)
	c.SqrtPrice = cloneBig(d.SqrtPrice)
	c.FeeGrowthGlobal0X128 = cloneBig(d.FeeGrowthGlobal0X128)
	c.FeeGrowthGlobal1X128 = cloneBig(d.FeeGrowthGlobal1X128)
	return &c
}

// PoolHourData is the per-pool hourly rollup with price OHLC.
type PoolHourData struct {
	PoolAddress        string
	PeriodStartUnix    uint64

	Liquidity            *big.Int
	SqrtPrice            *big.Int
	Token0Price          decimal.Decimal
	Token1Price          decimal.Decimal
	Tick                 int32
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
	TVLUSD               decimal.Decimal

	VolumeToken0 decimal.Decimal
	VolumeToken1 decimal.Decimal
	VolumeUSD    decimal.Decimal
	FeesUSD      decimal.Decimal
	TxCount      uint64

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

func NewPoolHourData(pool string, timestamp uint64) *PoolHourData {
	return &PoolHourData{
		PoolAddress:          pool,
		PeriodStartUnix:      HourIndex(timestamp) * SecondsPerHour,
		Liquidity:            new(big.Int),
		SqrtPrice:            new(big.Int),
		FeeGrowthGlobal0X128: new(big.Int),
		FeeGrowthGlobal1X128: new(big.Int),
	}
}

func (d *PoolHourData) EntityKind() Kind { return KindPoolHourData }
func (d *PoolHourData) EntityID() string {
	return bucketID(d.PoolAddress, d.PeriodStartUnix/SecondsPerHour)
}

func (d *PoolHourData) Clone() Entity {
	c := *d
	c.Liquidity = cloneBig(d.Liquidity)
	c.SqrtPrice = cloneBig(d.SqrtPrice)
	c.FeeGrowthGlobal0X128 = cloneBig(d.FeeGrowthGlobal0X128)
	c.FeeGrowthGlobal1X128 = cloneBig(d.FeeGrowthGlobal1X128)
	return &c
}

// TokenDayData is the per-token daily rollup with USD price OHLC.
type TokenDayData struct {
	TokenAddress string
	Date         uint64

	Volume             decimal.Decimal
	VolumeUSD          decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	FeesUSD            decimal.Decimal
	TotalValueLocked   decimal.Decimal
	TVLUSD             decimal.Decimal
	PriceUSD           decimal.Decimal

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

func NewTokenDayData(token string, timestamp uint64) *TokenDayData {
	return &TokenDayData{
		TokenAddress: token,
		Date:         DayIndex(timestamp) * SecondsPerDay,
	}
}

func (d *TokenDayData) EntityKind() Kind { return KindTokenDayData }
func (d *TokenDayData) EntityID() string {
	return bucketID(d.TokenAddress, d.Date/SecondsPerDay)
}

func (d *TokenDayData) Clone() Entity {
	c := *d
	return &c
}

// TokenHourData is the per-token hourly rollup with USD price OHLC.
type TokenHourData struct {
	TokenAddress    string
	PeriodStartUnix uint64

	Volume             decimal.Decimal
	VolumeUSD          decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	FeesUSD            decimal.Decimal
	TotalValueLocked   decimal.Decimal
	TVLUSD             decimal.Decimal
	PriceUSD           decimal.Decimal

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

func NewTokenHourData(token string, timestamp uint64) *TokenHourData {
	return &TokenHourData{
		TokenAddress:    token,
		PeriodStartUnix: HourIndex(timestamp) * SecondsPerHour,
	}
}

func (d *TokenHourData) EntityKind() Kind { return KindTokenHourData }
func (d *TokenHourData) EntityID() string {
	return bucketID(d.TokenAddress, d.PeriodStartUnix/SecondsPerHour)
}

func (d *TokenHourData) Clone() Entity {
	c := *d
	return &c
}

// TickDayData is the per-tick daily snapshot of the liquidity ledger.
type TickDayData struct {
	PoolAddress string
	TickIdx     int32
	Date        uint64

	LiquidityGross        *big.Int
	LiquidityNet          *big.Int
	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int
}

func NewTickDayData(tick *Tick, timestamp uint64) *TickDayData {
	return &TickDayData{
		PoolAddress:           tick.PoolAddress,
		TickIdx:               tick.TickIdx,
		Date:                  DayIndex(timestamp) * SecondsPerDay,
		LiquidityGross:        new(big.Int),
		LiquidityNet:          new(big.Int),
		FeeGrowthOutside0X128: new(big.Int),
		FeeGrowthOutside1X128: new(big.Int),
	}
}

func (d *TickDayData) EntityKind() Kind { return KindTickDayData }
func (d *TickDayData) EntityID() string {
	return bucketID(TickID(d.PoolAddress, d.TickIdx), d.Date/SecondsPerDay)
}

func (d *TickDayData) Clone() Entity {
	c := *d
	c.LiquidityGross = cloneBig(d.LiquidityGross)
	c.LiquidityNet = cloneBig(d.LiquidityNet)
	c.FeeGrowthOutside0X128 = cloneBig(d.FeeGrowthOutside0X128)
	c.FeeGrowthOutside1X128 = cloneBig(d.FeeGrowthOutside1X128)
	return &c
}
