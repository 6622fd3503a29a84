package entity

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Position is an NFT-based liquidity position, identified by token id.
// Created lazily from an authoritative position-manager read.
type Position struct {
	TokenID   string
	Owner     string
	Pool      string
	Token0    string
	Token1    string
	TickLower int32
	TickUpper int32

	Liquidity           *big.Int
	DepositedToken0     decimal.Decimal
	DepositedToken1     decimal.Decimal
	WithdrawnToken0     decimal.Decimal
	WithdrawnToken1     decimal.Decimal
	CollectedFeesToken0 decimal.Decimal
	CollectedFeesToken1 decimal.Decimal

	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// NewPosition returns a position with zeroed amounts.
func NewPosition(tokenID string) *Position {
	return &Position{
		TokenID:                  tokenID,
		Liquidity:                new(big.Int),
		FeeGrowthInside0LastX128: new(big.Int),
		FeeGrowthInside1LastX128: new(big.Int),
	}
}

func (p *Position) EntityKind() Kind { return KindPosition }
func (p *Position) EntityID() string { return p.TokenID }

func (p *Position) Clone() Entity {
	c := *p
	c.Liquidity = cloneBig(p.Liquidity)
	c.FeeGrowthInside0LastX128 = cloneBig(p.FeeGrowthInside0LastX128)
	c.FeeGrowthInside1LastX128 = cloneBig(p.FeeGrowthInside1LastX128)
	return &c
}

// PositionSnapshot is an immutable point-in-time copy of a position, keyed
// by (position, block number), appended after every position mutation.
type PositionSnapshot struct {
	PositionID  string
	BlockNumber uint64
	Timestamp   uint64
	Owner       string
	Pool        string

	Liquidity           *big.Int
	DepositedToken0     decimal.Decimal
	DepositedToken1     decimal.Decimal
	WithdrawnToken0     decimal.Decimal
	WithdrawnToken1     decimal.Decimal
	CollectedFeesToken0 decimal.Decimal
	CollectedFeesToken1 decimal.Decimal

	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// SnapshotPosition captures the position's current state at a block.
func SnapshotPosition(p *Position, blockNumber, timestamp uint64) *PositionSnapshot {
	return &PositionSnapshot{
		PositionID:               p.TokenID,
		BlockNumber:              blockNumber,
		Timestamp:                timestamp,
		Owner:                    p.Owner,
		Pool:                     p.Pool,
		Liquidity:                cloneBig(p.Liquidity),
		DepositedToken0:          p.DepositedToken0,
		DepositedToken1:          p.DepositedToken1,
		WithdrawnToken0:          p.WithdrawnToken0,
		WithdrawnToken1:          p.WithdrawnToken1,
		CollectedFeesToken0:      p.CollectedFeesToken0,
		CollectedFeesToken1:      p.CollectedFeesToken1,
		FeeGrowthInside0LastX128: cloneBig(p.FeeGrowthInside0LastX128),
		FeeGrowthInside1LastX128: cloneBig(p.FeeGrowthInside1LastX128),
	}
}

func (s *PositionSnapshot) EntityKind() Kind { return KindPositionSnapshot }

func (s *PositionSnapshot) EntityID() string {
	return fmt.Sprintf("%s#%d", s.PositionID, s.BlockNumber)
}

func (s *PositionSnapshot) Clone() Entity {
	c := *s
	c.Liquidity = cloneBig(s.Liquidity)
	c.FeeGrowthInside0LastX128 = cloneBig(s.FeeGrowthInside0LastX128)
	c.FeeGrowthInside1LastX128 = cloneBig(s.FeeGrowthInside1LastX128)
	return &c
}
