package store

import (
	"context"
	"sync"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/entity"
)

// Memory is the engine's working set. Entities are cloned on both save and
// load so a stored snapshot is never aliased by later in-place mutation.
// Saves are tracked as dirty until drained for a durable flush.
type Memory struct {
	mu    sync.RWMutex
	data  map[entity.Kind]map[string]entity.Entity
	dirty map[string]entity.Entity
}

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[entity.Kind]map[string]entity.Entity),
		dirty: make(map[string]entity.Entity),
	}
}

func (m *Memory) Load(ctx context.Context, kind entity.Kind, id string) (entity.Entity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID, ok := m.data[kind]
	if !ok {
		return nil, false, nil
	}
	e, ok := byID[id]
	if !ok {
		return nil, false, nil
	}
	return e.Clone(), true, nil
}

func (m *Memory) Save(ctx context.Context, e entity.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind := e.EntityKind()
	byID, ok := m.data[kind]
	if !ok {
		byID = make(map[string]entity.Entity)
		m.data[kind] = byID
	}

	snapshot := e.Clone()
	byID[e.EntityID()] = snapshot
	m.dirty[string(kind)+"/"+e.EntityID()] = snapshot
	return nil
}

// DrainDirty returns the entities saved since the previous drain and clears
// the dirty set. Each entity appears once with its latest snapshot.
func (m *Memory) DrainDirty() []entity.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.dirty) == 0 {
		return nil
	}
	out := make([]entity.Entity, 0, len(m.dirty))
	for _, e := range m.dirty {
		out = append(out, e)
	}
	m.dirty = make(map[string]entity.Entity)
	return out
}

// Len reports how many entities of a kind are held.
func (m *Memory) Len(kind entity.Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[kind])
}
