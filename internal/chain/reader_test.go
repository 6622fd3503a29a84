package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	testPositionManager = "0xc36442b4a4522e871399cd717abdd847ab11fe88"
	testFactory         = "0x1f98431c8ad98523631ae4a59f267346ea31f984"
)

// fakeCaller answers eth_call by method selector.
type fakeCaller struct {
	responses map[string][]byte
	errs      map[string]error
	calls     map[string]int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	selector := hex.EncodeToString(msg.Data[:4])
	f.calls[selector]++
	if err, ok := f.errs[selector]; ok {
		return nil, err
	}
	if resp, ok := f.responses[selector]; ok {
		return resp, nil
	}
	return nil, errors.New("execution reverted")
}

func selectorOf(t *testing.T, parsed abi.ABI, method string) string {
	t.Helper()
	m, ok := parsed.Methods[method]
	if !ok {
		t.Fatalf("method %s not in abi", method)
	}
	return hex.EncodeToString(m.ID)
}

func packOutputs(t *testing.T, parsed abi.ABI, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method, err)
	}
	return out
}

func newTestReader(caller contractCaller) *ContractReader {
	return NewContractReader(caller, testPositionManager, testFactory, 0, time.Millisecond, nil)
}

func TestTokenMetadataReadAndCache(t *testing.T) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}

	caller := newFakeCaller()
	caller.responses[selectorOf(t, stringABI, "decimals")] = packOutputs(t, stringABI, "decimals", uint8(6))
	caller.responses[selectorOf(t, stringABI, "symbol")] = packOutputs(t, stringABI, "symbol", "USDC")
	caller.responses[selectorOf(t, stringABI, "name")] = packOutputs(t, stringABI, "name", "USD Coin")
	caller.responses[selectorOf(t, stringABI, "totalSupply")] = packOutputs(t, stringABI, "totalSupply", big.NewInt(1_000_000))

	reader := newTestReader(caller)

	meta, err := reader.TokenMetadata(context.Background(), "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	if err != nil {
		t.Fatalf("token metadata: %v", err)
	}
	if meta.Symbol != "USDC" || meta.Name != "USD Coin" || meta.Decimals != 6 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.TotalSupply.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("total supply = %s", meta.TotalSupply)
	}

	decimalsSelector := selectorOf(t, stringABI, "decimals")
	before := caller.calls[decimalsSelector]
	if _, err := reader.TokenMetadata(context.Background(), "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"); err != nil {
		t.Fatalf("cached metadata: %v", err)
	}
	if caller.calls[decimalsSelector] != before {
		t.Fatalf("expected cache hit, got %d extra calls", caller.calls[decimalsSelector]-before)
	}
}

func TestTokenMetadataBytes32Fallback(t *testing.T) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		t.Fatalf("erc20 bytes32 abi: %v", err)
	}

	var symbol [32]byte
	copy(symbol[:], "MKR")
	var name [32]byte
	copy(name[:], "Maker")

	caller := newFakeCaller()
	caller.responses[selectorOf(t, stringABI, "decimals")] = packOutputs(t, stringABI, "decimals", uint8(18))
	// string-ABI symbol/name revert; only the bytes32 variants answer.
	caller.responses[selectorOf(t, bytes32ABI, "symbol")] = packOutputs(t, bytes32ABI, "symbol", symbol)
	caller.responses[selectorOf(t, bytes32ABI, "name")] = packOutputs(t, bytes32ABI, "name", name)

	reader := newTestReader(caller)

	meta, err := reader.TokenMetadata(context.Background(), "0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2")
	if err != nil {
		t.Fatalf("token metadata: %v", err)
	}
	if meta.Symbol != "MKR" || meta.Name != "Maker" {
		t.Fatalf("bytes32 fallback gave symbol=%q name=%q", meta.Symbol, meta.Name)
	}
	if meta.TotalSupply == nil || meta.TotalSupply.Sign() != 0 {
		t.Fatalf("missing totalSupply should default to zero, got %v", meta.TotalSupply)
	}
}

func TestTokenMetadataDecimalsRevertFails(t *testing.T) {
	reader := newTestReader(newFakeCaller())
	if _, err := reader.TokenMetadata(context.Background(), "0x0000000000000000000000000000000000000001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTickFeeGrowthOutside(t *testing.T) {
	parsed, err := poolABIInstance()
	if err != nil {
		t.Fatalf("pool abi: %v", err)
	}

	caller := newFakeCaller()
	caller.responses[selectorOf(t, parsed, "ticks")] = packOutputs(t, parsed, "ticks",
		big.NewInt(500), big.NewInt(-200), big.NewInt(1234), big.NewInt(5678),
		big.NewInt(0), big.NewInt(0), uint32(0), true)

	reader := newTestReader(caller)

	growth, err := reader.TickFeeGrowthOutside(context.Background(), "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8", -887220)
	if err != nil {
		t.Fatalf("tick fee growth: %v", err)
	}
	if growth.FeeGrowthOutside0X128.Cmp(big.NewInt(1234)) != 0 {
		t.Fatalf("outside0 = %s", growth.FeeGrowthOutside0X128)
	}
	if growth.FeeGrowthOutside1X128.Cmp(big.NewInt(5678)) != 0 {
		t.Fatalf("outside1 = %s", growth.FeeGrowthOutside1X128)
	}
}

func TestPositionRevertIsNotFound(t *testing.T) {
	reader := newTestReader(newFakeCaller())
	if _, err := reader.Position(context.Background(), big.NewInt(42)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPositionDecodesFields(t *testing.T) {
	parsed, err := positionManagerABIInstance()
	if err != nil {
		t.Fatalf("position manager abi: %v", err)
	}

	token0 := common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	token1 := common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")

	caller := newFakeCaller()
	caller.responses[selectorOf(t, parsed, "positions")] = packOutputs(t, parsed, "positions",
		big.NewInt(0), common.Address{}, token0, token1, big.NewInt(3000),
		big.NewInt(-887220), big.NewInt(887220), big.NewInt(0),
		big.NewInt(111), big.NewInt(222), big.NewInt(0), big.NewInt(0))

	reader := newTestReader(caller)

	pos, err := reader.Position(context.Background(), big.NewInt(7))
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.Token0 != "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2" {
		t.Fatalf("token0 = %s", pos.Token0)
	}
	if pos.FeeTier != 3000 || pos.TickLower != -887220 || pos.TickUpper != 887220 {
		t.Fatalf("unexpected position: %+v", pos)
	}
	if pos.FeeGrowthInside0LastX128.Cmp(big.NewInt(111)) != 0 || pos.FeeGrowthInside1LastX128.Cmp(big.NewInt(222)) != 0 {
		t.Fatalf("fee growth inside = %s/%s", pos.FeeGrowthInside0LastX128, pos.FeeGrowthInside1LastX128)
	}
}

func TestPoolForPairZeroAddressIsNotFound(t *testing.T) {
	parsed, err := factoryABIInstance()
	if err != nil {
		t.Fatalf("factory abi: %v", err)
	}

	caller := newFakeCaller()
	caller.responses[selectorOf(t, parsed, "getPool")] = packOutputs(t, parsed, "getPool", common.Address{})

	reader := newTestReader(caller)

	_, err = reader.PoolForPair(context.Background(),
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 100)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWithRetryTransientThenSuccess(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d", attempts)
	}
}

func TestWithRetryDoesNotRetryReverts(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return errors.New("execution reverted")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("revert retried %d times", attempts)
	}
}

func TestInt24FromBigOverflow(t *testing.T) {
	if _, err := int24FromBig(big.NewInt(1 << 23)); err == nil {
		t.Fatal("expected overflow error")
	}
	got, err := int24FromBig(big.NewInt(-1 << 23))
	if err != nil {
		t.Fatalf("min int24: %v", err)
	}
	if got != -1<<23 {
		t.Fatalf("min int24 = %d", got)
	}
}
