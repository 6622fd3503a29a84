package pricing

import "github.com/shopspring/decimal"

// Mainnet token addresses used as pricing intermediaries.
const (
	WETHAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	USDCAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	DAIAddress  = "0x6b175474e89094c44da98b954eedeac495271d0f"
	USDTAddress = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	WBTCAddress = "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"
	MKRAddress  = "0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2"
	LINKAddress = "0x514910771af9ca656af840dff83e8264ecf986ca"
	UNIAddress  = "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"
)

// WhitelistTokens are the tokens a pool may be priced against. A pool is
// recorded in a token's whitelistPools set when its counterpart is listed
// here.
var WhitelistTokens = []string{
	WETHAddress,
	USDCAddress,
	DAIAddress,
	USDTAddress,
	WBTCAddress,
	MKRAddress,
	LINKAddress,
	UNIAddress,
}

// referencePool pairs the wrapped reference asset with a stable token.
// StableIsToken0 records which side of the pair the stable sits on.
type referencePool struct {
	Address        string
	StableIsToken0 bool
}

// ReferencePools are scanned in order when deriving the reference asset's
// USD price; the first pool with nonzero liquidity wins.
var ReferencePools = []referencePool{
	{Address: "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640", StableIsToken0: true},  // USDC/WETH 0.05%
	{Address: "0x60594a405d53811d3bc4766596efd80fd545a270", StableIsToken0: true},  // DAI/WETH 0.3%
	{Address: "0x4e68ccd3e89f51c3074ca5072bbac773960dfa36", StableIsToken0: false}, // WETH/USDT 0.3%
}

// MinimumEthLocked is the least amount of the reference asset a candidate
// pool must hold before it can price a token.
var MinimumEthLocked = decimal.NewFromInt(60)

// IsWhitelisted reports whether the address is a pricing intermediary.
func IsWhitelisted(token string) bool {
	for _, addr := range WhitelistTokens {
		if addr == token {
			return true
		}
	}
	return false
}
