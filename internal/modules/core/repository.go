package core

import (
	"context"
	"sort"
	"sync"
)

// Repository is the data access contract shared by every persisted entity.
type Repository[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Save(ctx context.Context, entity T) error
	Delete(ctx context.Context, id int64) error
}

// EntityAccessor teaches MemoryRepository how to read, assign and copy ids.
type EntityAccessor[T any] struct {
	ID     func(T) int64
	WithID func(T, int64) T
	Clone  func(T) T
}

var _ Repository[struct{}] = (*MemoryRepository[struct{}])(nil)

// MemoryRepository keeps entities in a map. Values are cloned on the way
// in and out so callers never share slices with the store.
type MemoryRepository[T any] struct {
	mu       sync.RWMutex
	items    map[int64]T
	nextID   int64
	accessor EntityAccessor[T]
	notFound error
}

func NewMemoryRepository[T any](accessor EntityAccessor[T], notFound error) *MemoryRepository[T] {
	if accessor.Clone == nil {
		accessor.Clone = func(t T) T { return t }
	}

	return &MemoryRepository[T]{
		items:    make(map[int64]T),
		accessor: accessor,
		notFound: notFound,
	}
}

func (r *MemoryRepository[T]) Get(_ context.Context, id int64) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		var zero T
		return zero, r.notFound
	}

	return r.accessor.Clone(item), nil
}

func (r *MemoryRepository[T]) Create(_ context.Context, entity T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.create(entity), nil
}

func (r *MemoryRepository[T]) create(entity T) T {
	r.nextID++
	entity = r.accessor.WithID(entity, r.nextID)
	r.items[r.nextID] = r.accessor.Clone(entity)
	return r.accessor.Clone(entity)
}

func (r *MemoryRepository[T]) Save(_ context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.accessor.ID(entity)
	if _, ok := r.items[id]; !ok {
		return r.notFound
	}

	r.items[id] = r.accessor.Clone(entity)
	return nil
}

func (r *MemoryRepository[T]) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return r.notFound
	}

	delete(r.items, id)
	return nil
}

// List returns matching entities ordered by id.
func (r *MemoryRepository[T]) List(match func(T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(match)
}

func (r *MemoryRepository[T]) list(match func(T) bool) []T {
	var results []T
	for _, item := range r.items {
		if match == nil || match(item) {
			results = append(results, r.accessor.Clone(item))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return r.accessor.ID(results[i]) < r.accessor.ID(results[j])
	})

	return results
}

// CreateUnless inserts entity unless an existing one matches conflict,
// in which case the existing entity and false are returned. The check and
// the insert happen under one lock.
func (r *MemoryRepository[T]) CreateUnless(entity T, conflict func(T) bool) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.list(conflict); len(existing) > 0 {
		return existing[0], false
	}

	return r.create(entity), true
}
