// Package memory holds the process-local session and conversation stores.
package memory

import (
	"sync"

	"aria-support-chat/internal/domain"
)

// keyed is an insertion-ordered map guarded by one lock. Go schedules
// goroutines in parallel, so every read and write takes the lock; callers
// never hold it across a blocking call.
type keyed[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	order []string
}

func newKeyed[V any]() *keyed[V] {
	return &keyed[V]{items: make(map[string]V)}
}

func (k *keyed[V]) create(id string, v V) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.items[id]; ok {
		return domain.ErrAlreadyExists
	}
	k.items[id] = v
	k.order = append(k.order, id)
	return nil
}

func (k *keyed[V]) get(id string) (V, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.items[id]
	return v, ok
}

func (k *keyed[V]) has(id string) bool {
	_, ok := k.get(id)
	return ok
}

func (k *keyed[V]) set(id string, v V) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.items[id]; !ok {
		k.order = append(k.order, id)
	}
	k.items[id] = v
}

// update replaces the value under id with fn's result while holding the lock.
func (k *keyed[V]) update(id string, fn func(V) V) (V, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.items[id]
	if !ok {
		var zero V
		return zero, domain.ErrNotFound
	}
	v = fn(v)
	k.items[id] = v
	return v, nil
}

// each calls fn for every entry in insertion order under the read lock.
func (k *keyed[V]) each(fn func(id string, v V)) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, id := range k.order {
		fn(id, k.items[id])
	}
}

func (k *keyed[V]) len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.items)
}
