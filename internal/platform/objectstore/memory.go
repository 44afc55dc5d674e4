package objectstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailOn makes the named operation ("get", "put", ...) fail with a StorageIOError.
	FailOn map[string]error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) fail(op, key string) error {
	if err, ok := m.FailOn[op]; ok && err != nil {
		return &StorageIOError{Op: op, Key: key, Err: err}
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := m.fail("get", key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ioError("get", key, ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if err := m.fail("put", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	if err := m.fail("list", prefix); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Copy(ctx context.Context, src, dst string) error {
	if err := m.fail("copy", src); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[src]
	if !ok {
		return ioError("copy", src, ErrNotExist)
	}
	m.objects[dst] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := m.fail("delete", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ioError("delete", key, ErrNotExist)
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.fail("stat", key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Keys returns every stored key, sorted.
func (m *Memory) Keys() []string {
	keys, _ := m.List(context.Background(), "")
	return keys
}
