// Package pricing derives token prices by traversing whitelisted pools.
//
// All prices are expressed against the wrapped reference asset (WETH),
// whose own USD price comes from a fixed list of stable-pair reference
// pools. Tokens with no eligible whitelist pool stay unpriced at zero.
package pricing

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

// divPrecision is the number of fractional digits kept by price division.
// Token pairs can differ by up to 18 decimals, so the default shopspring
// precision of 16 digits would truncate small prices to zero.
const divPrecision = 38

var q192 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 192), 0)

var one = decimal.NewFromInt(1)

// Source looks up the pools and tokens the oracle traverses.
type Source interface {
	Pool(ctx context.Context, address string) (*entity.Pool, bool, error)
	Token(ctx context.Context, address string) (*entity.Token, bool, error)
}

// SqrtPriceX96ToTokenPrices converts the Q96 fixed-point square-root price
// into the two decimals-adjusted token prices:
//
//	price0 = (sqrtPriceX96 / 2^96)^2 * 10^(decimals0-decimals1)
//	price1 = 1 / price0
//
// A zero sqrt price yields a zero pair rather than dividing by zero.
func SqrtPriceX96ToTokenPrices(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (decimal.Decimal, decimal.Decimal) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return decimal.Zero, decimal.Zero
	}

	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	price0 := decimal.NewFromBigInt(num, 0).
		DivRound(q192, divPrecision).
		Shift(int32(decimals0) - int32(decimals1))
	if price0.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	price1 := one.DivRound(price0, divPrecision)
	return price0, price1
}

// EthPriceUSD returns the reference asset's USD price read from the first
// reference pool with nonzero liquidity, or zero when none qualifies.
func EthPriceUSD(ctx context.Context, src Source) (decimal.Decimal, error) {
	for _, ref := range ReferencePools {
		pool, ok, err := src.Pool(ctx, ref.Address)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok || pool.Liquidity == nil || pool.Liquidity.Sign() == 0 {
			continue
		}
		if ref.StableIsToken0 {
			return pool.Token1Price, nil
		}
		return pool.Token0Price, nil
	}
	return decimal.Zero, nil
}

// FindEthPerToken derives a token's price in the reference asset by
// scanning its whitelist pools. Among pools whose counterpart token holds
// at least MinimumEthLocked worth of the reference asset, the one with the
// largest locked amount wins; ties keep the first pool encountered.
func FindEthPerToken(ctx context.Context, src Source, token *entity.Token) (decimal.Decimal, error) {
	if token.Address == WETHAddress {
		return one, nil
	}

	largestLocked := decimal.Zero
	price := decimal.Zero

	for _, poolAddr := range token.WhitelistPools {
		pool, ok, err := src.Pool(ctx, poolAddr)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok || pool.Liquidity == nil || pool.Liquidity.Sign() == 0 {
			continue
		}

		var otherAddr string
		var otherLocked, pairPrice decimal.Decimal
		if pool.Token0 == token.Address {
			otherAddr = pool.Token1
			otherLocked = pool.TotalValueLockedToken1
			pairPrice = pool.Token0Price
		} else {
			otherAddr = pool.Token0
			otherLocked = pool.TotalValueLockedToken0
			pairPrice = pool.Token1Price
		}

		other, ok, err := src.Token(ctx, otherAddr)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			continue
		}

		ethLocked := otherLocked.Mul(other.DerivedETH)
		if ethLocked.Cmp(MinimumEthLocked) >= 0 && ethLocked.Cmp(largestLocked) > 0 {
			largestLocked = ethLocked
			price = pairPrice.Mul(other.DerivedETH)
		}
	}

	return price, nil
}
