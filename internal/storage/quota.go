// internal/storage/quota.go
package storage

import "sync"

// Quota wraps a Store and enforces a total byte budget across all keys,
// mirroring the bounded capacity of browser-style client storage. Writes
// that would push the total over the limit fail with ErrQuotaExceeded and
// leave the underlying store untouched.
type Quota struct {
	inner Store
	limit int

	mu    sync.Mutex
	sizes map[string]int
}

// NewQuota wraps inner with a byte budget. The accounting starts empty, so
// the wrapper should own the underlying store for its whole lifetime.
func NewQuota(inner Store, limit int) *Quota {
	return &Quota{
		inner: inner,
		limit: limit,
		sizes: make(map[string]int),
	}
}

// Get returns the value for key from the underlying store.
func (q *Quota) Get(key string) (string, error) {
	return q.inner.Get(key)
}

// Set stores value if the budget allows it.
func (q *Quota) Set(key, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	used := 0
	for k, n := range q.sizes {
		if k == key {
			continue
		}
		used += n
	}
	if used+len(key)+len(value) > q.limit {
		return ErrQuotaExceeded
	}

	if err := q.inner.Set(key, value); err != nil {
		return err
	}
	q.sizes[key] = len(key) + len(value)
	return nil
}

// Remove deletes key and releases its budget share.
func (q *Quota) Remove(key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.inner.Remove(key); err != nil {
		return err
	}
	delete(q.sizes, key)
	return nil
}
