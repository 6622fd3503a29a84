package entity

import "github.com/shopspring/decimal"

// Factory is the exchange-wide rollup. One instance exists per factory
// contract address.
type Factory struct {
	Address             string
	PoolCount           uint64
	TxCount             uint64
	TotalVolumeETH      decimal.Decimal
	TotalVolumeUSD      decimal.Decimal
	UntrackedVolumeUSD  decimal.Decimal
	TotalFeesETH        decimal.Decimal
	TotalFeesUSD        decimal.Decimal
	TotalValueLockedETH decimal.Decimal
	TotalValueLockedUSD decimal.Decimal
	Owner               string
}

// NewFactory returns a factory rollup with all aggregates zeroed.
func NewFactory(address string) *Factory {
	return &Factory{Address: address}
}

func (f *Factory) EntityKind() Kind { return KindFactory }
func (f *Factory) EntityID() string { return f.Address }

func (f *Factory) Clone() Entity {
	c := *f
	return &c
}

// Bundle holds the reference asset's price in USD. One instance exists.
type Bundle struct {
	ID          string
	EthPriceUSD decimal.Decimal
}

// BundleID is the fixed id of the singleton bundle record.
const BundleID = "1"

func NewBundle() *Bundle {
	return &Bundle{ID: BundleID}
}

func (b *Bundle) EntityKind() Kind { return KindBundle }
func (b *Bundle) EntityID() string { return b.ID }

func (b *Bundle) Clone() Entity {
	c := *b
	return &c
}
