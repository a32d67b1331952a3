// Package storage holds the interface-table sinks and the summary retention
// writer. All sinks satisfy model.Sink so discovery and the API never care
// which one is behind them.
package storage

import (
	"context"
	"sort"
	"sync"

	"EagleEye/internal/model"
)

// MemorySink is the in-memory interface table used for dry runs and tests.
type MemorySink struct {
	mu    sync.RWMutex
	items map[string]model.InterfaceItem
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{items: map[string]model.InterfaceItem{}}
}

var _ model.Sink = (*MemorySink)(nil)

func (m *MemorySink) Put(ctx context.Context, item model.InterfaceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MemorySink) Get(ctx context.Context, id string) (model.InterfaceItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	return item, ok, nil
}

func (m *MemorySink) Scan(ctx context.Context) ([]model.InterfaceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]model.InterfaceItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Query filters on vpc_id; that is the only secondary index the table carries.
func (m *MemorySink) Query(ctx context.Context, index, key string) ([]model.InterfaceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []model.InterfaceItem
	for _, item := range m.items {
		if index == "vpc_id" && item.VpcID == key {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemorySink) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports the number of stored items.
func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
