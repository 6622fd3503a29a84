package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Token is an ERC20 token observed through pool creation. Created lazily on
// the first pool referencing it; creation requires a successful on-chain
// decimals lookup.
type Token struct {
	Address     string
	Symbol      string
	Name        string
	Decimals    uint8
	TotalSupply *big.Int

	Volume             decimal.Decimal
	VolumeUSD          decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	FeesUSD            decimal.Decimal
	TxCount            uint64
	PoolCount          uint64

	TotalValueLocked    decimal.Decimal
	TotalValueLockedUSD decimal.Decimal

	// DerivedETH is the token price in the reference asset, refreshed by
	// price-sensitive events.
	DerivedETH decimal.Decimal

	// WhitelistPools lists pools pairing this token with a whitelist token,
	// used for price discovery.
	WhitelistPools []string
}

// NewToken returns a token with zeroed aggregates.
func NewToken(address string) *Token {
	return &Token{
		Address:     address,
		TotalSupply: new(big.Int),
	}
}

func (t *Token) EntityKind() Kind { return KindToken }
func (t *Token) EntityID() string { return t.Address }

func (t *Token) Clone() Entity {
	c := *t
	c.TotalSupply = cloneBig(t.TotalSupply)
	c.WhitelistPools = append([]string(nil), t.WhitelistPools...)
	return &c
}

// Transaction is created once per distinct hash and reused by all events
// within it.
type Transaction struct {
	Hash        string
	BlockNumber uint64
	Timestamp   uint64
	GasUsed     uint64
	GasPrice    *big.Int
}

func NewTransaction(hash string) *Transaction {
	return &Transaction{Hash: hash, GasPrice: new(big.Int)}
}

func (t *Transaction) EntityKind() Kind { return KindTransaction }
func (t *Transaction) EntityID() string { return t.Hash }

func (t *Transaction) Clone() Entity {
	c := *t
	c.GasPrice = cloneBig(t.GasPrice)
	return &c
}
