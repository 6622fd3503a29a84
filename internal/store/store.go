// Package store provides keyed-entity persistence for the aggregation
// engine: a load/save interface, the in-memory working set, and dirty
// tracking for batched flushes to durable storage.
package store

import (
	"context"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

// Store loads and saves entities by kind and id. There are no transactions
// and no delete; Load returns the latest saved snapshot.
type Store interface {
	Load(ctx context.Context, kind entity.Kind, id string) (entity.Entity, bool, error)
	Save(ctx context.Context, e entity.Entity) error
}
