// Package events defines the typed event envelope exchanged with the host
// and its hand-rolled wire codec. Quantities that can exceed 64 bits
// (amounts, ticks, liquidity, prices) are carried as decimal-digit text and
// parsed by the aggregation layer.
package events

import "github.com/mangas/uniswap-v3-dataset-sg/internal/wire"

// Type discriminates the ten event payload variants.
type Type int32

const (
	TypePoolCreated Type = iota
	TypeIncreaseLiquidity
	TypeDecreaseLiquidity
	TypeCollect
	TypeTransfer
	TypeInitialize
	TypeSwap
	TypeMint
	TypeBurn
	TypeFlash

	typeCount
)

func (t Type) String() string {
	switch t {
	case TypePoolCreated:
		return "pool_created"
	case TypeIncreaseLiquidity:
		return "increase_liquidity"
	case TypeDecreaseLiquidity:
		return "decrease_liquidity"
	case TypeCollect:
		return "collect"
	case TypeTransfer:
		return "transfer"
	case TypeInitialize:
		return "initialize"
	case TypeSwap:
		return "swap"
	case TypeMint:
		return "mint"
	case TypeBurn:
		return "burn"
	case TypeFlash:
		return "flash"
	default:
		return "unknown"
	}
}

// ParseType maps a type name back to its discriminant.
func ParseType(name string) (Type, bool) {
	for t := Type(0); t < typeCount; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Payload is the tagged union of event payloads. Exactly one variant is
// populated per event; the variant is fixed at decode time so a mismatched
// discriminant/payload pair cannot be constructed.
type Payload interface {
	Kind() Type
	Size() int
	marshalTo(w *wire.Writer)
	unmarshal(data []byte) error
}

// Event is one decoded protocol event plus its transaction metadata. The
// block fields are duplicated per event rather than carried once per batch
// so decode stays context-free.
type Event struct {
	Owner          string  `json:"owner"`
	Address        string  `json:"address"`
	TxHash         string  `json:"tx_hash"`
	TxGasUsed      uint64  `json:"tx_gas_used"`
	TxGasPrice     string  `json:"tx_gas_price"`
	BlockNumber    uint64  `json:"block_number"`
	BlockTimestamp string  `json:"block_timestamp"`
	Type           Type    `json:"type"`
	Payload        Payload `json:"-"`
}

// PoolCreated announces a new pool from the factory.
type PoolCreated struct {
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	FeeTier     uint64 `json:"fee_tier"`
	TickSpacing int32  `json:"tick_spacing"`
	PoolAddress string `json:"pool_address"`
}

// IncreaseLiquidity is a position-manager liquidity add.
type IncreaseLiquidity struct {
	TokenID   string `json:"token_id"`
	Liquidity string `json:"liquidity"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// DecreaseLiquidity is a position-manager liquidity removal.
type DecreaseLiquidity struct {
	TokenID   string `json:"token_id"`
	Liquidity string `json:"liquidity"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// Collect is a position-manager fee collection.
type Collect struct {
	TokenID   string `json:"token_id"`
	Recipient string `json:"recipient"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// Transfer reassigns ownership of a position NFT.
type Transfer struct {
	TokenID string `json:"token_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Initialize sets a pool's starting price and tick.
type Initialize struct {
	SqrtPrice string `json:"sqrt_price"`
	Tick      string `json:"tick"`
}

// Swap is a pool swap with post-swap pool state attached.
type Swap struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	SqrtPrice string `json:"sqrt_price"`
	Liquidity string `json:"liquidity"`
	Tick      string `json:"tick"`
}

// Mint adds liquidity to a tick range directly on the pool.
type Mint struct {
	Sender    string `json:"sender"`
	Owner     string `json:"owner"`
	TickLower string `json:"tick_lower"`
	TickUpper string `json:"tick_upper"`
	Amount    string `json:"amount"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// Burn removes liquidity from a tick range directly on the pool.
type Burn struct {
	Owner     string `json:"owner"`
	TickLower string `json:"tick_lower"`
	TickUpper string `json:"tick_upper"`
	Amount    string `json:"amount"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// Flash is a flash loan; it carries the paid fee amounts.
type Flash struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
	Paid0   string `json:"paid0"`
	Paid1   string `json:"paid1"`
}

func (*PoolCreated) Kind() Type       { return TypePoolCreated }
func (*IncreaseLiquidity) Kind() Type { return TypeIncreaseLiquidity }
func (*DecreaseLiquidity) Kind() Type { return TypeDecreaseLiquidity }
func (*Collect) Kind() Type           { return TypeCollect }
func (*Transfer) Kind() Type          { return TypeTransfer }
func (*Initialize) Kind() Type        { return TypeInitialize }
func (*Swap) Kind() Type              { return TypeSwap }
func (*Mint) Kind() Type              { return TypeMint }
func (*Burn) Kind() Type              { return TypeBurn }
func (*Flash) Kind() Type             { return TypeFlash }

// NewPayload returns a zero value of the payload variant for a type, or
// nil for an unknown type.
func NewPayload(t Type) Payload {
	return newPayload(t)
}

func newPayload(t Type) Payload {
	switch t {
	case TypePoolCreated:
		return &PoolCreated{}
	case TypeIncreaseLiquidity:
		return &IncreaseLiquidity{}
	case TypeDecreaseLiquidity:
		return &DecreaseLiquidity{}
	case TypeCollect:
		return &Collect{}
	case TypeTransfer:
		return &Transfer{}
	case TypeInitialize:
		return &Initialize{}
	case TypeSwap:
		return &Swap{}
	case TypeMint:
		return &Mint{}
	case TypeBurn:
		return &Burn{}
	case TypeFlash:
		return &Flash{}
	default:
		return nil
	}
}
