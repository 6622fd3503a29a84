package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Pool is one exchange pool, identified by contract address. Created on
// PoolCreated and never deleted.
type Pool struct {
	Address            string
	CreatedAtTimestamp uint64
	CreatedAtBlock     uint64
	Token0             string
	Token1             string
	FeeTier            uint64
	TickSpacing        int32

	// Live pool state, overwritten by Initialize and Swap.
	Liquidity    *big.Int
	SqrtPrice    *big.Int
	Tick         int32
	Token0Price  decimal.Decimal
	Token1Price  decimal.Decimal

	VolumeToken0       decimal.Decimal
	VolumeToken1       decimal.Decimal
	VolumeUSD          decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	FeesUSD            decimal.Decimal
	TxCount            uint64

	CollectedFeesToken0 decimal.Decimal
	CollectedFeesToken1 decimal.Decimal
	CollectedFeesUSD    decimal.Decimal

	TotalValueLockedToken0 decimal.Decimal
	TotalValueLockedToken1 decimal.Decimal
	TotalValueLockedETH    decimal.Decimal
	TotalValueLockedUSD    decimal.Decimal

	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
}

// NewPool returns a pool with zeroed aggregates and live state.
func NewPool(address string) *Pool {
	return &Pool{
		Address:              address,
		Liquidity:            new(big.Int),
		SqrtPrice:            new(big.Int),
		FeeGrowthGlobal0X128: new(big.Int),
		FeeGrowthGlobal1X128: new(big.Int),
	}
}

func (p *Pool) EntityKind() Kind { return KindPool }
func (p *Pool) EntityID() string { return p.Address }

func (p *Pool) Clone() Entity {
	c := *p
	c.Liquidity = cloneBig(p.Liquidity)
	c.SqrtPrice = cloneBig(p.SqrtPrice)
	c.FeeGrowthGlobal0X128 = cloneBig(p.FeeGrowthGlobal0X128)
	c.FeeGrowthGlobal1X128 = cloneBig(p.FeeGrowthGlobal1X128)
	return &c
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
