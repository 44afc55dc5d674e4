package objectstore

import (
	"context"
	"strings"
)

// Prefixed scopes every key of an inner Store under a fixed prefix.
type Prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix returns s unchanged when prefix is blank.
func WithPrefix(s Store, prefix string) Store {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return s
	}
	return &Prefixed{inner: s, prefix: prefix + "/"}
}

func (p *Prefixed) key(k string) string { return p.prefix + k }

func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.key(key))
}

func (p *Prefixed) Put(ctx context.Context, key string, data []byte) error {
	return p.inner.Put(ctx, p.key(key), data)
}

func (p *Prefixed) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := p.inner.List(ctx, p.key(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, p.prefix))
	}
	return out, nil
}

func (p *Prefixed) Copy(ctx context.Context, src, dst string) error {
	return p.inner.Copy(ctx, p.key(src), p.key(dst))
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.key(key))
}

func (p *Prefixed) Exists(ctx context.Context, key string) (bool, error) {
	return p.inner.Exists(ctx, p.key(key))
}

func (p *Prefixed) Move(ctx context.Context, src, dst string) error {
	return Move(ctx, p.inner, p.key(src), p.key(dst))
}
