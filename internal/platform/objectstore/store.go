package objectstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotExist is returned (wrapped) when a key has no object.
var ErrNotExist = errors.New("object does not exist")

// Store is a flat key namespace of byte blobs. Keys use "/" separators on every backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Copy(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Mover is implemented by backends with a native rename.
type Mover interface {
	Move(ctx context.Context, src, dst string) error
}

// Move relocates src to dst, using a native rename when the backend has one
// and copy+delete otherwise.
func Move(ctx context.Context, s Store, src, dst string) error {
	if m, ok := s.(Mover); ok {
		return m.Move(ctx, src, dst)
	}
	if err := s.Copy(ctx, src, dst); err != nil {
		return err
	}
	return s.Delete(ctx, src)
}

// StorageIOError wraps a backend failure other than a missing key.
type StorageIOError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

func ioError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotExist) {
		return fmt.Errorf("%s %q: %w", op, key, ErrNotExist)
	}
	return &StorageIOError{Op: op, Key: key, Err: err}
}

// IsNotExist reports whether err means the key was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}
