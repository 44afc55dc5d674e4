package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Local stores objects as files under Root.
type Local struct {
	Root string
}

func NewLocal(root string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("local object store: empty root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local object store: %w", err)
	}
	return &Local{Root: root}, nil
}

func (l *Local) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.Root, filepath.FromSlash(key)), nil
}

func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, ioError("get", key, err)
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ioError("get", key, ErrNotExist)
	}
	return data, ioError("get", key, err)
}

func (l *Local) Put(ctx context.Context, key string, data []byte) error {
	p, err := l.path(key)
	if err != nil {
		return ioError("put", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ioError("put", key, err)
	}
	return ioError("put", key, writeFileAtomic(p, data))
}

// writeFileAtomic writes to a temp file in the target directory and renames it over path.
func writeFileAtomic(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		return err
	}
	ok = true
	return nil
}

// List walks the directory holding prefix and returns every file key starting with prefix.
func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	dir := prefix
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
		if dir == "." {
			dir = ""
		}
	}
	start := filepath.Join(l.Root, filepath.FromSlash(dir))
	var out []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(l.Root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, ioError("list", prefix, err)
	}
	sort.Strings(out)
	return out, nil
}

func (l *Local) Copy(ctx context.Context, src, dst string) error {
	data, err := l.Get(ctx, src)
	if err != nil {
		return err
	}
	return l.Put(ctx, dst, data)
}

func (l *Local) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return ioError("delete", key, err)
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ioError("delete", key, ErrNotExist)
	}
	return ioError("delete", key, err)
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	p, err := l.path(key)
	if err != nil {
		return false, ioError("stat", key, err)
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioError("stat", key, err)
	}
	return !info.IsDir(), nil
}

// Move renames within the root.
func (l *Local) Move(ctx context.Context, src, dst string) error {
	sp, err := l.path(src)
	if err != nil {
		return ioError("move", src, err)
	}
	dp, err := l.path(dst)
	if err != nil {
		return ioError("move", dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dp), 0o755); err != nil {
		return ioError("move", dst, err)
	}
	err = os.Rename(sp, dp)
	if errors.Is(err, fs.ErrNotExist) {
		return ioError("move", src, ErrNotExist)
	}
	return ioError("move", src, err)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("null bytes not allowed")
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\") || filepath.IsAbs(key) {
		return fmt.Errorf("absolute keys not allowed")
	}
	for _, part := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed")
		}
	}
	return nil
}
