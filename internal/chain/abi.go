package chain

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const poolABIJSON = `[
  {"inputs": [{"type": "int24", "name": "tick"}], "name": "ticks", "outputs": [
    {"type": "uint128", "name": "liquidityGross"},
    {"type": "int128", "name": "liquidityNet"},
    {"type": "uint256", "name": "feeGrowthOutside0X128"},
    {"type": "uint256", "name": "feeGrowthOutside1X128"},
    {"type": "int56", "name": "tickCumulativeOutside"},
    {"type": "uint160", "name": "secondsPerLiquidityOutsideX128"},
    {"type": "uint32", "name": "secondsOutside"},
    {"type": "bool", "name": "initialized"}
  ], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "feeGrowthGlobal0X128", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "feeGrowthGlobal1X128", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const positionManagerABIJSON = `[
  {"inputs": [{"type": "uint256", "name": "tokenId"}], "name": "positions", "outputs": [
    {"type": "uint96", "name": "nonce"},
    {"type": "address", "name": "operator"},
    {"type": "address", "name": "token0"},
    {"type": "address", "name": "token1"},
    {"type": "uint24", "name": "fee"},
    {"type": "int24", "name": "tickLower"},
    {"type": "int24", "name": "tickUpper"},
    {"type": "uint128", "name": "liquidity"},
    {"type": "uint256", "name": "feeGrowthInside0LastX128"},
    {"type": "uint256", "name": "feeGrowthInside1LastX128"},
    {"type": "uint128", "name": "tokensOwed0"},
    {"type": "uint128", "name": "tokensOwed1"}
  ], "stateMutability": "view", "type": "function"}
]`

const factoryABIJSON = `[
  {"inputs": [
    {"type": "address", "name": "tokenA"},
    {"type": "address", "name": "tokenB"},
    {"type": "uint24", "name": "fee"}
  ], "name": "getPool", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABIString      abi.ABI
	erc20ABIStringOnce  sync.Once
	erc20ABIStringErr   error
	erc20ABIBytes32     abi.ABI
	erc20ABIBytes32Once sync.Once
	erc20ABIBytes32Err  error
	poolABI             abi.ABI
	poolABIOnce         sync.Once
	poolABIErr          error
	positionManagerABI  abi.ABI
	positionManagerOnce sync.Once
	positionManagerErr  error
	factoryABI          abi.ABI
	factoryABIOnce      sync.Once
	factoryABIErr       error
)

func erc20ABIStringInstance() (abi.ABI, error) {
	erc20ABIStringOnce.Do(func() {
		erc20ABIString, erc20ABIStringErr = abi.JSON(strings.NewReader(erc20ABIStringJSON))
	})
	return erc20ABIString, erc20ABIStringErr
}

func erc20ABIBytes32Instance() (abi.ABI, error) {
	erc20ABIBytes32Once.Do(func() {
		erc20ABIBytes32, erc20ABIBytes32Err = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return erc20ABIBytes32, erc20ABIBytes32Err
}

func poolABIInstance() (abi.ABI, error) {
	poolABIOnce.Do(func() {
		poolABI, poolABIErr = abi.JSON(strings.NewReader(poolABIJSON))
	})
	return poolABI, poolABIErr
}

func positionManagerABIInstance() (abi.ABI, error) {
	positionManagerOnce.Do(func() {
		positionManagerABI, positionManagerErr = abi.JSON(strings.NewReader(positionManagerABIJSON))
	})
	return positionManagerABI, positionManagerErr
}

func factoryABIInstance() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryABIErr
}
