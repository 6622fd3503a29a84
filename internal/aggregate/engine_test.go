package aggregate

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/chain"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/pricing"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/store"
)

const (
	testFactory = "0x1f98431c8ad98523631ae4a59f267346ea31f984"
	refPool     = "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"

	// 20000 << 96: USDC(6)/WETH(18) at 2500 USD per reference asset.
	refSqrtPrice = "1584563250285286751870879006720000"
)

type fakeReader struct {
	tokens    map[string]chain.TokenMetadata
	positions map[string]chain.PositionInfo
	pairPools map[string]string

	tickCalls []int32
}

func (f *fakeReader) TokenMetadata(ctx context.Context, token string) (chain.TokenMetadata, error) {
	meta, ok := f.tokens[token]
	if !ok {
		return chain.TokenMetadata{}, chain.ErrNotFound
	}
	return meta, nil
}

func (f *fakeReader) TickFeeGrowthOutside(ctx context.Context, pool string, tick int32) (chain.TickFeeGrowth, error) {
	f.tickCalls = append(f.tickCalls, tick)
	return chain.TickFeeGrowth{
		FeeGrowthOutside0X128: big.NewInt(int64(tick) + 7),
		FeeGrowthOutside1X128: big.NewInt(int64(tick) + 11),
	}, nil
}

func (f *fakeReader) FeeGrowthGlobals(ctx context.Context, pool string) (chain.FeeGrowthGlobals, error) {
	return chain.FeeGrowthGlobals{}, chain.ErrNotFound
}

func (f *fakeReader) Position(ctx context.Context, tokenID *big.Int) (chain.PositionInfo, error) {
	info, ok := f.positions[tokenID.String()]
	if !ok {
		return chain.PositionInfo{}, chain.ErrNotFound
	}
	return info, nil
}

func (f *fakeReader) PoolForPair(ctx context.Context, token0, token1 string, feeTier uint64) (string, error) {
	pool, ok := f.pairPools[fmt.Sprintf("%s/%s/%d", token0, token1, feeTier)]
	if !ok {
		return "", chain.ErrNotFound
	}
	return pool, nil
}

type fakeRegistry struct {
	pools []string
}

func (r *fakeRegistry) RegisterPool(address string) {
	r.pools = append(r.pools, address)
}

func newTestEngine(t *testing.T) (*Engine, *fakeReader, *fakeRegistry) {
	t.Helper()
	reader := &fakeReader{
		tokens:    make(map[string]chain.TokenMetadata),
		positions: make(map[string]chain.PositionInfo),
		pairPools: make(map[string]string),
	}
	registry := &fakeRegistry{}
	engine := NewEngine(Config{FactoryAddress: testFactory}, store.NewMemory(), reader, registry, zap.NewNop(), nil)
	return engine, reader, registry
}

func testEvent(typ events.Type, address string, payload events.Payload) events.Event {
	return events.Event{
		Owner:          "0xowner",
		Address:        address,
		TxHash:         "0xtxhash",
		TxGasUsed:      21000,
		TxGasPrice:     "30000000000",
		BlockNumber:    1000,
		BlockTimestamp: "1620252600",
		Type:           typ,
		Payload:        payload,
	}
}

func processOne(t *testing.T, e *Engine, ev events.Event) {
	t.Helper()
	if _, err := e.ProcessBatch(context.Background(), events.EncodeBatch([]events.Event{ev})); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
}

func loadPool(t *testing.T, e *Engine, address string) *entity.Pool {
	t.Helper()
	raw, ok, err := e.store.Load(context.Background(), entity.KindPool, address)
	if err != nil || !ok {
		t.Fatalf("pool %s: ok=%v err=%v", address, ok, err)
	}
	return raw.(*entity.Pool)
}

func loadToken(t *testing.T, e *Engine, address string) *entity.Token {
	t.Helper()
	raw, ok, err := e.store.Load(context.Background(), entity.KindToken, address)
	if err != nil || !ok {
		t.Fatalf("token %s: ok=%v err=%v", address, ok, err)
	}
	return raw.(*entity.Token)
}

func loadFactory(t *testing.T, e *Engine) *entity.Factory {
	t.Helper()
	raw, ok, err := e.store.Load(context.Background(), entity.KindFactory, testFactory)
	if err != nil || !ok {
		t.Fatalf("factory: ok=%v err=%v", ok, err)
	}
	return raw.(*entity.Factory)
}

// seedReferencePool installs the USDC/WETH reference pool with both tokens
// priced: the reference asset at 2500 USD and the stable at 1 USD.
func seedReferencePool(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()

	usdc := entity.NewToken(pricing.USDCAddress)
	usdc.Symbol = "USDC"
	usdc.Decimals = 6
	usdc.DerivedETH = decimal.RequireFromString("0.0004")
	usdc.TotalValueLocked = decimal.NewFromInt(1_000_000)
	usdc.WhitelistPools = []string{refPool}

	weth := entity.NewToken(pricing.WETHAddress)
	weth.Symbol = "WETH"
	weth.Decimals = 18
	weth.DerivedETH = decimal.NewFromInt(1)
	weth.TotalValueLocked = decimal.NewFromInt(1000)
	weth.WhitelistPools = []string{refPool}

	pool := entity.NewPool(refPool)
	pool.Token0 = pricing.USDCAddress
	pool.Token1 = pricing.WETHAddress
	pool.FeeTier = 3000
	pool.TickSpacing = 60
	pool.Liquidity = big.NewInt(1)
	pool.SqrtPrice, _ = entity.ParseBigInt(refSqrtPrice)
	pool.Tick = 100
	pool.Token0Price = decimal.RequireFromString("0.0004")
	pool.Token1Price = decimal.NewFromInt(2500)
	pool.TotalValueLockedToken0 = decimal.NewFromInt(1_000_000)
	pool.TotalValueLockedToken1 = decimal.NewFromInt(1000)
	pool.TotalValueLockedETH = decimal.NewFromInt(1400)
	pool.TotalValueLockedUSD = decimal.NewFromInt(3_500_000)

	factory := entity.NewFactory(testFactory)
	factory.PoolCount = 1
	factory.TotalValueLockedETH = decimal.NewFromInt(1400)
	factory.TotalValueLockedUSD = decimal.NewFromInt(3_500_000)

	bundle := entity.NewBundle()
	bundle.EthPriceUSD = decimal.NewFromInt(2500)

	for _, ent := range []entity.Entity{usdc, weth, pool, factory, bundle} {
		if err := e.store.Save(ctx, ent); err != nil {
			t.Fatalf("seed %s: %v", ent.EntityKind(), err)
		}
	}
}

func TestPoolCreatedRegistersPoolAndTokens(t *testing.T) {
	engine, reader, registry := newTestEngine(t)
	reader.tokens["0xaaa"] = chain.TokenMetadata{Symbol: "AAA", Name: "Token A", Decimals: 18}
	reader.tokens[pricing.WETHAddress] = chain.TokenMetadata{Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18}

	processOne(t, engine, testEvent(events.TypePoolCreated, testFactory, &events.PoolCreated{
		Token0:      "0xaaa",
		Token1:      pricing.WETHAddress,
		FeeTier:     3000,
		TickSpacing: 60,
		PoolAddress: "0xpool",
	}))

	pool := loadPool(t, engine, "0xpool")
	if pool.FeeTier != 3000 || pool.TickSpacing != 60 {
		t.Fatalf("pool = %+v", pool)
	}
	if pool.CreatedAtBlock != 1000 || pool.CreatedAtTimestamp != 1620252600 {
		t.Fatalf("pool creation envelope = %d/%d", pool.CreatedAtBlock, pool.CreatedAtTimestamp)
	}

	factory := loadFactory(t, engine)
	if factory.PoolCount != 1 {
		t.Fatalf("factory.PoolCount = %d, want 1", factory.PoolCount)
	}
	if factory.Owner != "0xowner" {
		t.Fatalf("factory.Owner = %q", factory.Owner)
	}

	// The non-whitelisted token gains a price-discovery candidate; the
	// whitelisted side does not.
	aaa := loadToken(t, engine, "0xaaa")
	if len(aaa.WhitelistPools) != 1 || aaa.WhitelistPools[0] != "0xpool" {
		t.Fatalf("aaa.WhitelistPools = %v", aaa.WhitelistPools)
	}
	weth := loadToken(t, engine, pricing.WETHAddress)
	if len(weth.WhitelistPools) != 0 {
		t.Fatalf("weth.WhitelistPools = %v", weth.WhitelistPools)
	}

	if len(registry.pools) != 1 || registry.pools[0] != "0xpool" {
		t.Fatalf("registered pools = %v", registry.pools)
	}
}

func TestPoolCreatedReplayIsIdempotent(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.tokens["0xaaa"] = chain.TokenMetadata{Symbol: "AAA", Decimals: 18}
	reader.tokens["0xbbb"] = chain.TokenMetadata{Symbol: "BBB", Decimals: 6}

	ev := testEvent(events.TypePoolCreated, testFactory, &events.PoolCreated{
		Token0:      "0xaaa",
		Token1:      "0xbbb",
		FeeTier:     500,
		TickSpacing: 10,
		PoolAddress: "0xpool",
	})
	processOne(t, engine, ev)

	// Accumulate some state, then replay the creation event.
	pool := loadPool(t, engine, "0xpool")
	pool.TxCount = 7
	pool.VolumeUSD = decimal.NewFromInt(123)
	if err := engine.store.Save(context.Background(), pool); err != nil {
		t.Fatalf("save pool: %v", err)
	}

	processOne(t, engine, ev)

	if got := loadFactory(t, engine).PoolCount; got != 1 {
		t.Fatalf("factory.PoolCount after replay = %d, want 1", got)
	}
	pool = loadPool(t, engine, "0xpool")
	if pool.TxCount != 7 || !pool.VolumeUSD.Equal(decimal.NewFromInt(123)) {
		t.Fatalf("replay reset pool state: %+v", pool)
	}
	if got := loadToken(t, engine, "0xaaa").PoolCount; got != 1 {
		t.Fatalf("token pool count after replay = %d, want 1", got)
	}
}

func TestPoolCreatedUnknownTokenIsSkipped(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.tokens["0xaaa"] = chain.TokenMetadata{Symbol: "AAA", Decimals: 18}
	// 0xdead has no metadata: decimals lookup reverts.

	processOne(t, engine, testEvent(events.TypePoolCreated, testFactory, &events.PoolCreated{
		Token0:      "0xaaa",
		Token1:      "0xdead",
		FeeTier:     3000,
		TickSpacing: 60,
		PoolAddress: "0xpool",
	}))

	if _, ok, _ := engine.store.Load(context.Background(), entity.KindPool, "0xpool"); ok {
		t.Fatal("pool created despite unresolvable token")
	}
}

func TestSwapVolumesAndPrices(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	// 2500 USDC in, 1 WETH out, post-swap state unchanged from the seed.
	processOne(t, engine, testEvent(events.TypeSwap, refPool, &events.Swap{
		Sender:    "0xsender",
		Recipient: "0xrecipient",
		Amount0:   "2500000000",
		Amount1:   "-1000000000000000000",
		SqrtPrice: refSqrtPrice,
		Liquidity: "1",
		Tick:      "100",
	}))

	pool := loadPool(t, engine, refPool)
	if !pool.VolumeToken0.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("pool.VolumeToken0 = %s", pool.VolumeToken0)
	}
	if !pool.VolumeToken1.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("pool.VolumeToken1 = %s", pool.VolumeToken1)
	}
	// Both sides whitelisted: (2500*1 + 1*2500)/2.
	if !pool.VolumeUSD.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("pool.VolumeUSD = %s, want 2500", pool.VolumeUSD)
	}
	if !pool.FeesUSD.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("pool.FeesUSD = %s, want 7.5", pool.FeesUSD)
	}
	if pool.TxCount != 1 {
		t.Fatalf("pool.TxCount = %d", pool.TxCount)
	}
	if !pool.Token1Price.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("pool.Token1Price = %s, want 2500", pool.Token1Price)
	}
	if !pool.TotalValueLockedToken0.Equal(decimal.NewFromInt(1_002_500)) {
		t.Fatalf("pool TVL0 = %s", pool.TotalValueLockedToken0)
	}
	if !pool.TotalValueLockedToken1.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("pool TVL1 = %s", pool.TotalValueLockedToken1)
	}
	// 1002500*0.0004 + 999*1 = 1400 ETH.
	if !pool.TotalValueLockedETH.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("pool TVL ETH = %s, want 1400", pool.TotalValueLockedETH)
	}

	factory := loadFactory(t, engine)
	if !factory.TotalVolumeUSD.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("factory.TotalVolumeUSD = %s", factory.TotalVolumeUSD)
	}
	if !factory.TotalVolumeETH.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("factory.TotalVolumeETH = %s, want 1", factory.TotalVolumeETH)
	}
	if !factory.TotalValueLockedETH.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("factory TVL ETH = %s, want 1400", factory.TotalValueLockedETH)
	}

	bundle, ok, _ := engine.store.Load(context.Background(), entity.KindBundle, entity.BundleID)
	if !ok {
		t.Fatal("bundle missing")
	}
	if got := bundle.(*entity.Bundle).EthPriceUSD; !got.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("EthPriceUSD = %s, want 2500", got)
	}

	usdc := loadToken(t, engine, pricing.USDCAddress)
	if !usdc.DerivedETH.Equal(decimal.RequireFromString("0.0004")) {
		t.Fatalf("usdc.DerivedETH = %s", usdc.DerivedETH)
	}
	if !usdc.VolumeUSD.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("usdc.VolumeUSD = %s", usdc.VolumeUSD)
	}

	// Day bucket created by this swap: OHLC pinned to the current price.
	dayID := entity.NewPoolDayData(refPool, 1620252600).EntityID()
	raw, ok, _ := engine.store.Load(context.Background(), entity.KindPoolDayData, dayID)
	if !ok {
		t.Fatal("pool day data missing")
	}
	day := raw.(*entity.PoolDayData)
	if !day.VolumeUSD.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("day.VolumeUSD = %s", day.VolumeUSD)
	}
	if !day.Open.Equal(day.Close) || !day.Open.Equal(decimal.RequireFromString("0.0004")) {
		t.Fatalf("day OHLC = %s/%s", day.Open, day.Close)
	}
	if day.TxCount != 1 {
		t.Fatalf("day.TxCount = %d", day.TxCount)
	}
}

func TestSwapOnUnknownPoolIsSkipped(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.tokens["0xaaa"] = chain.TokenMetadata{Symbol: "AAA", Decimals: 18}
	reader.tokens["0xbbb"] = chain.TokenMetadata{Symbol: "BBB", Decimals: 18}

	// The swap references a pool never announced; the batch continues and
	// the later creation still lands.
	batch := events.EncodeBatch([]events.Event{
		testEvent(events.TypeSwap, "0xunknown", &events.Swap{
			Amount0: "1", Amount1: "-1", SqrtPrice: "1", Liquidity: "1", Tick: "0",
		}),
		testEvent(events.TypePoolCreated, testFactory, &events.PoolCreated{
			Token0: "0xaaa", Token1: "0xbbb", FeeTier: 3000, TickSpacing: 60, PoolAddress: "0xpool",
		}),
	})

	maxBlock, err := engine.ProcessBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if maxBlock != 1000 {
		t.Fatalf("maxBlock = %d, want 1000", maxBlock)
	}
	loadPool(t, engine, "0xpool")
}

func TestDecodeErrorAbortsBatch(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, err := engine.ProcessBatch(context.Background(), []byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatal("expected decode error")
	}
	if _, ok, _ := engine.store.Load(context.Background(), entity.KindFactory, testFactory); ok {
		t.Fatal("state mutated by aborted batch")
	}
}

func TestMintInsideRangeMovesActiveLiquidity(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	processOne(t, engine, testEvent(events.TypeMint, refPool, &events.Mint{
		Sender:    "0xsender",
		Owner:     "0xlp",
		TickLower: "-120",
		TickUpper: "120",
		Amount:    "1000",
		Amount0:   "5000000000",
		Amount1:   "2000000000000000000",
	}))

	pool := loadPool(t, engine, refPool)
	// Current tick 100 sits in [-120, 120): active liquidity moves.
	if pool.Liquidity.Cmp(big.NewInt(1001)) != 0 {
		t.Fatalf("pool.Liquidity = %s, want 1001", pool.Liquidity)
	}
	if !pool.TotalValueLockedToken0.Equal(decimal.NewFromInt(1_005_000)) {
		t.Fatalf("pool TVL0 = %s", pool.TotalValueLockedToken0)
	}
	if !pool.TotalValueLockedToken1.Equal(decimal.NewFromInt(1002)) {
		t.Fatalf("pool TVL1 = %s", pool.TotalValueLockedToken1)
	}

	for _, tc := range []struct {
		idx     int32
		wantNet int64
	}{{-120, 1000}, {120, -1000}} {
		raw, ok, _ := engine.store.Load(context.Background(), entity.KindTick, entity.TickID(refPool, tc.idx))
		if !ok {
			t.Fatalf("tick %d missing", tc.idx)
		}
		tick := raw.(*entity.Tick)
		if tick.LiquidityGross.Cmp(big.NewInt(1000)) != 0 {
			t.Fatalf("tick %d gross = %s", tc.idx, tick.LiquidityGross)
		}
		if tick.LiquidityNet.Cmp(big.NewInt(tc.wantNet)) != 0 {
			t.Fatalf("tick %d net = %s, want %d", tc.idx, tick.LiquidityNet, tc.wantNet)
		}
		if tick.CreatedAtBlock != 1000 {
			t.Fatalf("tick %d created at %d", tc.idx, tick.CreatedAtBlock)
		}
	}
}

func TestMintOutsideRangeLeavesActiveLiquidity(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	processOne(t, engine, testEvent(events.TypeMint, refPool, &events.Mint{
		Owner:     "0xlp",
		TickLower: "180",
		TickUpper: "300",
		Amount:    "1000",
		Amount0:   "1000000",
		Amount1:   "0",
	}))

	pool := loadPool(t, engine, refPool)
	if pool.Liquidity.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("pool.Liquidity = %s, want unchanged 1", pool.Liquidity)
	}

	raw, ok, _ := engine.store.Load(context.Background(), entity.KindTick, entity.TickID(refPool, 180))
	if !ok {
		t.Fatal("boundary tick missing")
	}
	if got := raw.(*entity.Tick).LiquidityGross; got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("tick gross = %s", got)
	}
}

func TestBurnReversesMint(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	processOne(t, engine, testEvent(events.TypeMint, refPool, &events.Mint{
		TickLower: "-120", TickUpper: "120", Amount: "1000",
		Amount0: "5000000000", Amount1: "2000000000000000000",
	}))
	processOne(t, engine, testEvent(events.TypeBurn, refPool, &events.Burn{
		TickLower: "-120", TickUpper: "120", Amount: "400",
		Amount0: "2000000000", Amount1: "800000000000000000",
	}))

	pool := loadPool(t, engine, refPool)
	if pool.Liquidity.Cmp(big.NewInt(601)) != 0 {
		t.Fatalf("pool.Liquidity = %s, want 601", pool.Liquidity)
	}
	if !pool.TotalValueLockedToken0.Equal(decimal.NewFromInt(1_003_000)) {
		t.Fatalf("pool TVL0 = %s", pool.TotalValueLockedToken0)
	}

	raw, _, _ := engine.store.Load(context.Background(), entity.KindTick, entity.TickID(refPool, -120))
	lower := raw.(*entity.Tick)
	if lower.LiquidityGross.Cmp(big.NewInt(600)) != 0 || lower.LiquidityNet.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("lower tick = gross %s net %s", lower.LiquidityGross, lower.LiquidityNet)
	}
}

func TestSweepRefreshesStraddledTicks(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	// Aligned ticks inside and outside the jump. Only known ticks are
	// refreshed, and only those strictly inside (100, 430].
	for _, idx := range []int32{60, 120, 180, 240, 300, 360, 420, 480} {
		if err := engine.store.Save(ctx, entity.NewTick(refPool, idx)); err != nil {
			t.Fatalf("save tick: %v", err)
		}
	}

	pool := loadPool(t, engine, refPool)
	tc := txContext{address: refPool, block: 1000, timestamp: 1620252600}
	swept, truncated, err := engine.sweepTicks(ctx, tc, pool, 100, 430)
	if err != nil {
		t.Fatalf("sweepTicks: %v", err)
	}
	if truncated {
		t.Fatal("unexpected truncation")
	}

	want := []int32{120, 180, 240, 300, 360, 420}
	if len(reader.tickCalls) != len(want) {
		t.Fatalf("tick refreshes = %v, want %v", reader.tickCalls, want)
	}
	for i, idx := range want {
		if reader.tickCalls[i] != idx {
			t.Fatalf("tick refreshes = %v, want %v", reader.tickCalls, want)
		}
	}
	if swept != len(want) {
		t.Fatalf("swept = %d, want %d", swept, len(want))
	}

	// Refreshed values land in the tick ledger.
	raw, _, _ := engine.store.Load(ctx, entity.KindTick, entity.TickID(refPool, 120))
	if got := raw.(*entity.Tick).FeeGrowthOutside0X128; got.Cmp(big.NewInt(127)) != 0 {
		t.Fatalf("tick 120 feeGrowthOutside0 = %s, want 127", got)
	}
}

func TestSweepDownwardWithNegativeTicks(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	for _, idx := range []int32{-180, -120, -60, 0, 60} {
		if err := engine.store.Save(ctx, entity.NewTick(refPool, idx)); err != nil {
			t.Fatalf("save tick: %v", err)
		}
	}

	pool := loadPool(t, engine, refPool)
	tc := txContext{address: refPool, block: 1000, timestamp: 1620252600}
	// -180 is aligned: refreshed first, then the downward walk skips it.
	swept, truncated, err := engine.sweepTicks(ctx, tc, pool, 30, -180)
	if err != nil {
		t.Fatalf("sweepTicks: %v", err)
	}
	if truncated {
		t.Fatal("unexpected truncation")
	}

	want := []int32{-180, 0, -60, -120}
	if len(reader.tickCalls) != len(want) {
		t.Fatalf("tick refreshes = %v, want %v", reader.tickCalls, want)
	}
	for i, idx := range want {
		if reader.tickCalls[i] != idx {
			t.Fatalf("tick refreshes = %v, want %v", reader.tickCalls, want)
		}
	}
	if swept != len(want) {
		t.Fatalf("swept = %d", swept)
	}
}

func TestSweepWideJumpIsTruncated(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	for _, idx := range []int32{120, 60000} {
		if err := engine.store.Save(ctx, entity.NewTick(refPool, idx)); err != nil {
			t.Fatalf("save tick: %v", err)
		}
	}

	pool := loadPool(t, engine, refPool)
	tc := txContext{address: refPool, block: 1000, timestamp: 1620252600}
	swept, truncated, err := engine.sweepTicks(ctx, tc, pool, 100, 60000)
	if err != nil {
		t.Fatalf("sweepTicks: %v", err)
	}
	if !truncated {
		t.Fatal("expected truncation for a 998-step jump")
	}
	// The aligned landing tick is still refreshed; the interior is not.
	if swept != 1 || len(reader.tickCalls) != 1 || reader.tickCalls[0] != 60000 {
		t.Fatalf("swept=%d calls=%v", swept, reader.tickCalls)
	}
}

func TestIncreaseLiquidityCreatesPosition(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	reader.positions["42"] = chain.PositionInfo{
		Token0:                   pricing.USDCAddress,
		Token1:                   pricing.WETHAddress,
		FeeTier:                  3000,
		TickLower:                -60,
		TickUpper:                60,
		FeeGrowthInside0LastX128: big.NewInt(77),
		FeeGrowthInside1LastX128: big.NewInt(88),
	}
	reader.pairPools[fmt.Sprintf("%s/%s/%d", pricing.USDCAddress, pricing.WETHAddress, 3000)] = refPool

	processOne(t, engine, testEvent(events.TypeIncreaseLiquidity, "0xmanager", &events.IncreaseLiquidity{
		TokenID:   "42",
		Liquidity: "5000",
		Amount0:   "2500000000",
		Amount1:   "1000000000000000000",
	}))

	raw, ok, _ := engine.store.Load(ctx, entity.KindPosition, "42")
	if !ok {
		t.Fatal("position missing")
	}
	position := raw.(*entity.Position)
	if position.Pool != refPool {
		t.Fatalf("position.Pool = %q", position.Pool)
	}
	if position.TickLower != -60 || position.TickUpper != 60 {
		t.Fatalf("position range = [%d, %d]", position.TickLower, position.TickUpper)
	}
	if position.Liquidity.Cmp(big.NewInt(5000)) != 0 {
		t.Fatalf("position.Liquidity = %s", position.Liquidity)
	}
	if !position.DepositedToken0.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("DepositedToken0 = %s", position.DepositedToken0)
	}
	if !position.DepositedToken1.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("DepositedToken1 = %s", position.DepositedToken1)
	}
	if position.FeeGrowthInside0LastX128.Cmp(big.NewInt(77)) != 0 {
		t.Fatalf("FeeGrowthInside0LastX128 = %s", position.FeeGrowthInside0LastX128)
	}

	if _, ok, _ := engine.store.Load(ctx, entity.KindPositionSnapshot, "42#1000"); !ok {
		t.Fatal("position snapshot missing")
	}
}

func TestPositionLifecycle(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	reader.positions["7"] = chain.PositionInfo{
		Token0:                   pricing.USDCAddress,
		Token1:                   pricing.WETHAddress,
		FeeTier:                  3000,
		TickLower:                -600,
		TickUpper:                600,
		FeeGrowthInside0LastX128: big.NewInt(0),
		FeeGrowthInside1LastX128: big.NewInt(0),
	}
	reader.pairPools[fmt.Sprintf("%s/%s/%d", pricing.USDCAddress, pricing.WETHAddress, 3000)] = refPool

	processOne(t, engine, testEvent(events.TypeIncreaseLiquidity, "0xmanager", &events.IncreaseLiquidity{
		TokenID: "7", Liquidity: "1000", Amount0: "1000000000", Amount1: "400000000000000000",
	}))
	processOne(t, engine, testEvent(events.TypeDecreaseLiquidity, "0xmanager", &events.DecreaseLiquidity{
		TokenID: "7", Liquidity: "300", Amount0: "300000000", Amount1: "120000000000000000",
	}))
	processOne(t, engine, testEvent(events.TypeTransfer, "0xmanager", &events.Transfer{
		TokenID: "7", From: "0xalice", To: "0xbob",
	}))

	raw, _, _ := engine.store.Load(ctx, entity.KindPosition, "7")
	position := raw.(*entity.Position)
	if position.Liquidity.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("position.Liquidity = %s, want 700", position.Liquidity)
	}
	if !position.WithdrawnToken0.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("WithdrawnToken0 = %s", position.WithdrawnToken0)
	}
	if !position.WithdrawnToken1.Equal(decimal.RequireFromString("0.12")) {
		t.Fatalf("WithdrawnToken1 = %s", position.WithdrawnToken1)
	}
	if position.Owner != "0xbob" {
		t.Fatalf("position.Owner = %q", position.Owner)
	}
}

func TestCollectAccumulatesBothCountersFromAmount0(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	reader.positions["9"] = chain.PositionInfo{
		Token0:                   pricing.USDCAddress,
		Token1:                   pricing.WETHAddress,
		FeeTier:                  3000,
		FeeGrowthInside0LastX128: big.NewInt(0),
		FeeGrowthInside1LastX128: big.NewInt(0),
	}
	reader.pairPools[fmt.Sprintf("%s/%s/%d", pricing.USDCAddress, pricing.WETHAddress, 3000)] = refPool

	processOne(t, engine, testEvent(events.TypeCollect, "0xmanager", &events.Collect{
		TokenID: "9", Recipient: "0xlp", Amount0: "50000000", Amount1: "999000000000000000",
	}))

	raw, _, _ := engine.store.Load(ctx, entity.KindPosition, "9")
	position := raw.(*entity.Position)
	want := decimal.NewFromInt(50)
	if !position.CollectedFeesToken0.Equal(want) {
		t.Fatalf("CollectedFeesToken0 = %s, want %s", position.CollectedFeesToken0, want)
	}
	// Both counters track the token0-denominated amount.
	if !position.CollectedFeesToken1.Equal(want) {
		t.Fatalf("CollectedFeesToken1 = %s, want %s", position.CollectedFeesToken1, want)
	}
}

func TestPositionOnUnknownPoolIsSkipped(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	reader.positions["13"] = chain.PositionInfo{
		Token0:  "0xaaa",
		Token1:  "0xbbb",
		FeeTier: 500,
	}
	reader.pairPools["0xaaa/0xbbb/500"] = "0xneverseen"

	processOne(t, engine, testEvent(events.TypeIncreaseLiquidity, "0xmanager", &events.IncreaseLiquidity{
		TokenID: "13", Liquidity: "1", Amount0: "1", Amount1: "1",
	}))

	if _, ok, _ := engine.store.Load(context.Background(), entity.KindPosition, "13"); ok {
		t.Fatal("position created for unknown pool")
	}
}

func TestTransactionRecordedOncePerHash(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)
	ctx := context.Background()

	ev := testEvent(events.TypeMint, refPool, &events.Mint{
		TickLower: "0", TickUpper: "60", Amount: "1", Amount0: "0", Amount1: "0",
	})
	processOne(t, engine, ev)
	processOne(t, engine, ev)

	raw, ok, _ := engine.store.Load(ctx, entity.KindTransaction, "0xtxhash")
	if !ok {
		t.Fatal("transaction missing")
	}
	tx := raw.(*entity.Transaction)
	if tx.BlockNumber != 1000 || tx.GasUsed != 21000 {
		t.Fatalf("transaction = %+v", tx)
	}
	if tx.GasPrice.Cmp(big.NewInt(30000000000)) != 0 {
		t.Fatalf("tx.GasPrice = %s", tx.GasPrice)
	}
}

func TestInitializeSetsPriceAndTick(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seedReferencePool(t, engine)

	processOne(t, engine, testEvent(events.TypeInitialize, refPool, &events.Initialize{
		SqrtPrice: refSqrtPrice,
		Tick:      "85170",
	}))

	pool := loadPool(t, engine, refPool)
	if pool.Tick != 85170 {
		t.Fatalf("pool.Tick = %d", pool.Tick)
	}
	want, _ := entity.ParseBigInt(refSqrtPrice)
	if pool.SqrtPrice.Cmp(want) != 0 {
		t.Fatalf("pool.SqrtPrice = %s", pool.SqrtPrice)
	}
}
