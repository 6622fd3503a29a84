package entity

import (
	"fmt"
	"math/big"
)

// Tick is one boundary of the per-pool liquidity ledger, identified by
// (pool, tick index). Created lazily on the first mint referencing it and
// never deleted.
type Tick struct {
	PoolAddress string
	TickIdx     int32

	// LiquidityGross totals liquidity referencing this boundary;
	// LiquidityNet is the signed delta applied when price crosses upward.
	LiquidityGross *big.Int
	LiquidityNet   *big.Int

	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int

	CreatedAtTimestamp uint64
	CreatedAtBlock     uint64
}

// TickID builds the store key for a (pool, tick index) pair.
func TickID(pool string, tickIdx int32) string {
	return fmt.Sprintf("%s#%d", pool, tickIdx)
}

// NewTick returns a tick boundary with zeroed accumulators.
func NewTick(pool string, tickIdx int32) *Tick {
	return &Tick{
		PoolAddress:           pool,
		TickIdx:               tickIdx,
		LiquidityGross:        new(big.Int),
		LiquidityNet:          new(big.Int),
		FeeGrowthOutside0X128: new(big.Int),
		FeeGrowthOutside1X128: new(big.Int),
	}
}

func (t *Tick) EntityKind() Kind { return KindTick }
func (t *Tick) EntityID() string { return TickID(t.PoolAddress, t.TickIdx) }

func (t *Tick) Clone() Entity {
	c := *t
	c.LiquidityGross = cloneBig(t.LiquidityGross)
	c.LiquidityNet = cloneBig(t.LiquidityNet)
	c.FeeGrowthOutside0X128 = cloneBig(t.FeeGrowthOutside0X128)
	c.FeeGrowthOutside1X128 = cloneBig(t.FeeGrowthOutside1X128)
	return &c
}
