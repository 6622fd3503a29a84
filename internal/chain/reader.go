package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a contract call reverts, meaning the
// requested state does not exist on chain (for example a burned
// position NFT or a token without ERC20 metadata).
var ErrNotFound = errors.New("chain: not found")

// TokenMetadata holds the ERC20 fields read from a token contract.
type TokenMetadata struct {
	Symbol      string
	Name        string
	Decimals    uint8
	TotalSupply *big.Int
}

// TickFeeGrowth holds the fee growth accumulators read from a pool tick.
type TickFeeGrowth struct {
	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int
}

// FeeGrowthGlobals holds the pool-level fee growth accumulators.
type FeeGrowthGlobals struct {
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
}

// PositionInfo holds the on-chain state of a position NFT.
type PositionInfo struct {
	Token0                   string
	Token1                   string
	FeeTier                  uint64
	TickLower                int32
	TickUpper                int32
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// Reader reads contract state needed by the aggregation engine.
type Reader interface {
	TokenMetadata(ctx context.Context, token string) (TokenMetadata, error)
	TickFeeGrowthOutside(ctx context.Context, pool string, tick int32) (TickFeeGrowth, error)
	FeeGrowthGlobals(ctx context.Context, pool string) (FeeGrowthGlobals, error)
	Position(ctx context.Context, tokenID *big.Int) (PositionInfo, error)
	PoolForPair(ctx context.Context, token0, token1 string, feeTier uint64) (string, error)
}

type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ContractReader implements Reader on top of eth_call, with retries for
// transport failures and an in-memory cache for token metadata.
type ContractReader struct {
	caller          contractCaller
	positionManager common.Address
	factory         common.Address
	maxRetries      int
	retryBackoff    time.Duration
	logger          *zap.Logger

	mu         sync.RWMutex
	tokenCache map[string]TokenMetadata
}

// NewContractReader creates a ContractReader using the given client.
func NewContractReader(caller contractCaller, positionManager, factory string, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *ContractReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractReader{
		caller:          caller,
		positionManager: common.HexToAddress(positionManager),
		factory:         common.HexToAddress(factory),
		maxRetries:      maxRetries,
		retryBackoff:    retryBackoff,
		logger:          logger,
		tokenCache:      make(map[string]TokenMetadata),
	}
}

// TokenMetadata reads symbol, name, decimals and totalSupply from a
// token contract. The decimals call is mandatory; symbol and name fall
// back to the bytes32 ABI variant used by older tokens, and missing
// totalSupply defaults to zero.
func (r *ContractReader) TokenMetadata(ctx context.Context, token string) (TokenMetadata, error) {
	key := strings.ToLower(token)

	r.mu.RLock()
	cached, ok := r.tokenCache[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return TokenMetadata{}, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return TokenMetadata{}, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	addr := common.HexToAddress(token)
	meta := TokenMetadata{TotalSupply: new(big.Int)}

	values, err := r.call(ctx, addr, stringABI, "decimals")
	if err != nil {
		return TokenMetadata{}, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return TokenMetadata{}, fmt.Errorf("token %s decimals: %w", token, err)
	}
	meta.Decimals = decimals

	if values, err := r.call(ctx, addr, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := r.call(ctx, addr, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token), zap.Error(err))
	}

	if values, err := r.call(ctx, addr, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := r.call(ctx, addr, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		r.logger.Debug("name call failed", zap.String("token", token), zap.Error(err))
	}

	if values, err := r.call(ctx, addr, stringABI, "totalSupply"); err == nil {
		if supply, err := asBigInt(values[0]); err == nil {
			meta.TotalSupply = supply
		}
	}

	r.mu.Lock()
	r.tokenCache[key] = meta
	r.mu.Unlock()

	return meta, nil
}

// TickFeeGrowthOutside reads the fee growth outside accumulators for a
// single initialized tick of a pool.
func (r *ContractReader) TickFeeGrowthOutside(ctx context.Context, pool string, tick int32) (TickFeeGrowth, error) {
	parsed, err := poolABIInstance()
	if err != nil {
		return TickFeeGrowth{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := r.call(ctx, common.HexToAddress(pool), parsed, "ticks", big.NewInt(int64(tick)))
	if err != nil {
		return TickFeeGrowth{}, err
	}
	if len(values) < 4 {
		return TickFeeGrowth{}, fmt.Errorf("ticks returned %d values", len(values))
	}

	outside0, err := asBigInt(values[2])
	if err != nil {
		return TickFeeGrowth{}, fmt.Errorf("feeGrowthOutside0X128: %w", err)
	}
	outside1, err := asBigInt(values[3])
	if err != nil {
		return TickFeeGrowth{}, fmt.Errorf("feeGrowthOutside1X128: %w", err)
	}

	return TickFeeGrowth{
		FeeGrowthOutside0X128: outside0,
		FeeGrowthOutside1X128: outside1,
	}, nil
}

// FeeGrowthGlobals reads the pool-level fee growth accumulators.
func (r *ContractReader) FeeGrowthGlobals(ctx context.Context, pool string) (FeeGrowthGlobals, error) {
	parsed, err := poolABIInstance()
	if err != nil {
		return FeeGrowthGlobals{}, fmt.Errorf("parse pool abi: %w", err)
	}

	addr := common.HexToAddress(pool)

	values, err := r.call(ctx, addr, parsed, "feeGrowthGlobal0X128")
	if err != nil {
		return FeeGrowthGlobals{}, err
	}
	global0, err := asBigInt(values[0])
	if err != nil {
		return FeeGrowthGlobals{}, fmt.Errorf("feeGrowthGlobal0X128: %w", err)
	}

	values, err = r.call(ctx, addr, parsed, "feeGrowthGlobal1X128")
	if err != nil {
		return FeeGrowthGlobals{}, err
	}
	global1, err := asBigInt(values[0])
	if err != nil {
		return FeeGrowthGlobals{}, fmt.Errorf("feeGrowthGlobal1X128: %w", err)
	}

	return FeeGrowthGlobals{
		FeeGrowthGlobal0X128: global0,
		FeeGrowthGlobal1X128: global1,
	}, nil
}

// Position reads a position NFT from the position manager. A revert
// (burned or never-minted token) is reported as ErrNotFound.
func (r *ContractReader) Position(ctx context.Context, tokenID *big.Int) (PositionInfo, error) {
	parsed, err := positionManagerABIInstance()
	if err != nil {
		return PositionInfo{}, fmt.Errorf("parse position manager abi: %w", err)
	}

	values, err := r.call(ctx, r.positionManager, parsed, "positions", tokenID)
	if err != nil {
		return PositionInfo{}, err
	}
	if len(values) < 12 {
		return PositionInfo{}, fmt.Errorf("positions returned %d values", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("token1: %w", err)
	}
	fee, err := asBigInt(values[4])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("fee: %w", err)
	}
	tickLowerBig, err := asBigInt(values[5])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerBig)
	if err != nil {
		return PositionInfo{}, err
	}
	tickUpperBig, err := asBigInt(values[6])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperBig)
	if err != nil {
		return PositionInfo{}, err
	}
	inside0, err := asBigInt(values[8])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("feeGrowthInside0LastX128: %w", err)
	}
	inside1, err := asBigInt(values[9])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("feeGrowthInside1LastX128: %w", err)
	}

	return PositionInfo{
		Token0:                   strings.ToLower(token0.Hex()),
		Token1:                   strings.ToLower(token1.Hex()),
		FeeTier:                  fee.Uint64(),
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		FeeGrowthInside0LastX128: inside0,
		FeeGrowthInside1LastX128: inside1,
	}, nil
}

// PoolForPair resolves the pool address for a token pair and fee tier
// through the factory.
func (r *ContractReader) PoolForPair(ctx context.Context, token0, token1 string, feeTier uint64) (string, error) {
	parsed, err := factoryABIInstance()
	if err != nil {
		return "", fmt.Errorf("parse factory abi: %w", err)
	}

	values, err := r.call(ctx, r.factory, parsed, "getPool",
		common.HexToAddress(token0), common.HexToAddress(token1), new(big.Int).SetUint64(feeTier))
	if err != nil {
		return "", err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return "", fmt.Errorf("pool address: %w", err)
	}
	if pool == (common.Address{}) {
		return "", ErrNotFound
	}
	return strings.ToLower(pool.Hex()), nil
}

func (r *ContractReader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}

	var resp []byte
	err = withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.caller.CallContract(ctx, msg, nil)
		return callErr
	})
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("call %s: %w", method, ErrNotFound)
		}
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(resp) == 0 {
		// eth_call against a non-contract address returns empty data.
		return nil, fmt.Errorf("call %s: %w", method, ErrNotFound)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func isRevert(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "execution reverted")
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
