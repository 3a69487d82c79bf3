package objectstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// Memory is an in-process object store used by tests and local runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	reads   map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		reads:   make(map[string]int),
	}
}

func (m *Memory) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[objectPath(bucket, key)] = append([]byte(nil), data...)
}

func (m *Memory) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path := objectPath(bucket, key)
	m.reads[path]++

	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: s3://%s", domain.ErrObjectNotFound, path)
	}

	return append([]byte(nil), data...), nil
}

// Reads returns how many times bucket/key was requested.
func (m *Memory) Reads(bucket, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.reads[objectPath(bucket, key)]
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}
