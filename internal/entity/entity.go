// Package entity defines the aggregate state records maintained by the
// engine: pools, tokens, the factory-level rollup, the tick ledger,
// positions, transactions, and the time-bucketed derived records.
//
// Raw on-chain quantities are *big.Int; decimals-adjusted amounts and
// USD/ETH values are shopspring decimals.
package entity

// Kind names an entity type for the store.
type Kind string

const (
	KindFactory          Kind = "factory"
	KindBundle           Kind = "bundle"
	KindPool             Kind = "pool"
	KindToken            Kind = "token"
	KindTick             Kind = "tick"
	KindPosition         Kind = "position"
	KindPositionSnapshot Kind = "position_snapshot"
	KindTransaction      Kind = "transaction"
	KindFactoryDayData   Kind = "factory_day_data"
	KindPoolDayData      Kind = "pool_day_data"
	KindPoolHourData     Kind = "pool_hour_data"
	KindTokenDayData     Kind = "token_day_data"
	KindTokenHourData    Kind = "token_hour_data"
	KindTickDayData      Kind = "tick_day_data"
)

// Entity is a keyed state record. Clone returns a deep copy so stored
// snapshots are isolated from later in-place mutation.
type Entity interface {
	EntityKind() Kind
	EntityID() string
	Clone() Entity
}

const (
	// SecondsPerHour and SecondsPerDay bound the derived-record buckets.
	SecondsPerHour = 3600
	SecondsPerDay  = 86400
)
