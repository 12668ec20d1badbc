package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kubecrud/items-api/internal/item"
)

var errNullName = errors.New(`null value in column "name" violates not-null constraint`)

// MemoryRepo is an in-memory repository with the same observable behaviour as
// the Postgres one: serial ids that are never reused, ascending listing and a
// not-null name. Used by tests and local runs without a database.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*item.Item
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*item.Item)}
}

func (m *MemoryRepo) List(ctx context.Context) ([]*item.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*item.Item, 0, len(m.store))
	for _, it := range m.store {
		out = append(out, clone(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id int64) (*item.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if it, ok := m.store[id]; ok {
		return clone(it), nil
	}
	return nil, item.ErrNotFound
}

func (m *MemoryRepo) Create(ctx context.Context, name string, description *string) (*item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	it := &item.Item{
		ID:          m.nextID,
		Name:        name,
		Description: copyString(description),
		CreatedAt:   time.Now().UTC(),
	}
	m.store[it.ID] = it
	return clone(it), nil
}

func (m *MemoryRepo) Replace(ctx context.Context, id int64, name, description *string) (*item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.store[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	if name == nil {
		return nil, errNullName
	}
	it.Name = *name
	it.Description = copyString(description)
	return clone(it), nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return item.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func clone(it *item.Item) *item.Item {
	c := *it
	c.Description = copyString(it.Description)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
