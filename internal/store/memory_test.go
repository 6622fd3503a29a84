package store

import (
	"context"
	"math/big"
	"testing"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

func TestMemoryLoadMissing(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Load(context.Background(), entity.KindPool, "0xabc")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestMemorySaveLoadIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	pool := entity.NewPool("0xabc")
	pool.Liquidity = big.NewInt(100)
	if err := m.Save(ctx, pool); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Mutating the original after save must not leak into the store.
	pool.Liquidity.SetInt64(999)

	loaded, ok, err := m.Load(ctx, entity.KindPool, "0xabc")
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	got := loaded.(*entity.Pool)
	if got.Liquidity.Int64() != 100 {
		t.Fatalf("stored snapshot was aliased: liquidity=%s", got.Liquidity)
	}

	// Mutating the loaded copy must not change the store either.
	got.Liquidity.SetInt64(7)
	again, _, _ := m.Load(ctx, entity.KindPool, "0xabc")
	if again.(*entity.Pool).Liquidity.Int64() != 100 {
		t.Fatalf("loaded snapshot was aliased")
	}
}

func TestMemoryPartialUpdatePreservesFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	token := entity.NewToken("0xdef")
	token.Symbol = "USDC"
	token.Decimals = 6
	if err := m.Save(ctx, token); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, _, _ := m.Load(ctx, entity.KindToken, "0xdef")
	updated := loaded.(*entity.Token)
	updated.TxCount = 5
	if err := m.Save(ctx, updated); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	final, _, _ := m.Load(ctx, entity.KindToken, "0xdef")
	tok := final.(*entity.Token)
	if tok.Symbol != "USDC" || tok.Decimals != 6 || tok.TxCount != 5 {
		t.Fatalf("partial update lost fields: %+v", tok)
	}
}

func TestMemoryDrainDirty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	pool := entity.NewPool("0xabc")
	if err := m.Save(ctx, pool); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	pool.TxCount = 2
	if err := m.Save(ctx, pool); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	dirty := m.DrainDirty()
	if len(dirty) != 1 {
		t.Fatalf("expected 1 dirty entity, got %d", len(dirty))
	}
	if dirty[0].(*entity.Pool).TxCount != 2 {
		t.Fatalf("dirty entity is not the latest snapshot")
	}

	if second := m.DrainDirty(); second != nil {
		t.Fatalf("expected empty drain, got %d", len(second))
	}
}
