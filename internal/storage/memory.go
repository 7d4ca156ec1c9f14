package storage

import (
	"sync"

	"github.com/rs/zerolog"
)

type memoryBlobs struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewMemory returns a Store that keeps blobs in memory. It goes through the same
// encoding as the durable store.
func NewMemory(logger zerolog.Logger) Store {
	return newStore(&memoryBlobs{data: make(map[string][]byte)}, logger)
}

// NewMemoryWith returns a memory Store seeded with raw blobs.
func NewMemoryWith(logger zerolog.Logger, seed map[string][]byte) Store {
	m := &memoryBlobs{data: make(map[string][]byte, len(seed))}
	for k, v := range seed {
		m.data[k] = append([]byte(nil), v...)
	}

	return newStore(m, logger)
}

func (m *memoryBlobs) get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), v...), nil
}

func (m *memoryBlobs) put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)

	return nil
}
