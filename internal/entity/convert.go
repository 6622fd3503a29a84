package entity

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseBigInt parses decimal-digit text carried in event payloads into an
// arbitrary-precision integer. Empty text is zero.
func ParseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

// ParseTick parses a text-encoded tick index.
func ParseTick(value string) (int32, error) {
	v, err := ParseBigInt(value)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("tick out of range: %s", value)
	}
	return int32(v.Int64()), nil
}

// ToDecimal converts a raw on-chain amount into its decimals-adjusted form:
// raw / 10^decimals.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, 0).Shift(-int32(decimals))
}
