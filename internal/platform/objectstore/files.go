package objectstore

import (
	"context"

	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
)

// Files reads and writes tables and documents through a Store, picking the
// codec from each key's extension.
type Files struct {
	Store   Store
	Formats *fileformat.Registry
}

func NewFiles(s Store, formats *fileformat.Registry) *Files {
	if formats == nil {
		formats = fileformat.Default()
	}
	return &Files{Store: s, Formats: formats}
}

func (f *Files) ReadTable(ctx context.Context, key string) (*fileformat.Table, error) {
	if _, err := f.Formats.For(key); err != nil {
		return nil, err
	}
	data, err := f.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return f.Formats.ReadTable(key, data)
}

func (f *Files) WriteTable(ctx context.Context, key string, t *fileformat.Table) error {
	data, err := f.Formats.WriteTable(key, t)
	if err != nil {
		return err
	}
	return f.Store.Put(ctx, key, data)
}

func (f *Files) ReadDocument(ctx context.Context, key string, v any) error {
	data, err := f.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	return f.Formats.DecodeDocument(key, data, v)
}

func (f *Files) WriteDocument(ctx context.Context, key string, v any) error {
	data, err := f.Formats.EncodeDocument(key, v)
	if err != nil {
		return err
	}
	return f.Store.Put(ctx, key, data)
}
