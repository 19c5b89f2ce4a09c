package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is an in-process Backend used in tests and when running
// without a persistence medium. Failures can be injected to exercise the
// store's degraded mode.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string]string
	failErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

// Fail makes every subsequent operation return err. Pass nil to heal.
func (b *MemoryBackend) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failErr = err
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return "", false, b.failErr
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return b.failErr
	}
	b.data[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return b.failErr
	}
	delete(b.data, key)
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return nil, b.failErr
	}
	var keys []string
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return b.failErr
	}
	b.data = make(map[string]string)
	return nil
}
