// Package memstore provides in-memory repositories with the same semantics as
// the PostgreSQL ones. They back REPO_BACKEND=mem and the HTTP tests.
package memstore

import (
	"sort"
	"sync"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

// table is a mutex-guarded row map with an auto-incrementing id allocator.
type table[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

// allocate returns the next id. Callers hold mu.
func (t *table[T]) allocate() int64 {
	t.nextID++
	return t.nextID
}

// sortedIDs returns ids in ascending order. Callers hold mu.
func (t *table[T]) sortedIDs() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// page filters rows with match, orders them by id and slices out one page.
func (t *table[T]) page(match func(T) bool, req domain.PageRequest) ([]T, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var matched []T
	for _, id := range t.sortedIDs() {
		if row := t.rows[id]; match(row) {
			matched = append(matched, row)
		}
	}
	start, end := req.Window(len(matched))
	items := make([]T, end-start)
	copy(items, matched[start:end])
	return items, int64(len(matched))
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// delete removes id, reporting whether it existed.
func (t *table[T]) delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// update applies fn to the stored row under the write lock.
func (t *table[T]) update(id int64, fn func(*T)) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	fn(&row)
	t.rows[id] = row
	return row, true
}
