package fileformat

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Codec converts between file bytes and a Table.
type Codec interface {
	ReadTable(data []byte) (*Table, error)
	WriteTable(t *Table) ([]byte, error)
}

// DocumentCodec is implemented by formats that also hold single structured
// documents, such as metadata sidecars.
type DocumentCodec interface {
	Decode(data []byte, v any) error
	Encode(v any) ([]byte, error)
}

type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec{}}
}

// Default returns a registry with every built-in format registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".csv", CSV{})
	r.Register(".json", JSON{})
	r.Register(".geojson", GeoJSON{})
	r.Register(".yaml", YAML{})
	r.Register(".yml", YAML{})
	r.Register(".xlsx", XLSX{})
	r.Register(".xls", XLS{})
	return r
}

// Register binds ext (with or without the leading dot) to c, replacing any previous codec.
func (r *Registry) Register(ext string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[normalizeExt(ext)] = c
}

func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// For resolves the codec for a key by its extension.
func (r *Registry) For(key string) (Codec, error) {
	ext := normalizeExt(path.Ext(key))
	r.mu.RLock()
	c, ok := r.codecs[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedFormatError{Ext: ext}
	}
	return c, nil
}

func (r *Registry) ReadTable(key string, data []byte) (*Table, error) {
	c, err := r.For(key)
	if err != nil {
		return nil, err
	}
	t, err := c.ReadTable(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return t, nil
}

func (r *Registry) WriteTable(key string, t *Table) ([]byte, error) {
	c, err := r.For(key)
	if err != nil {
		return nil, err
	}
	return c.WriteTable(t)
}

func (r *Registry) DecodeDocument(key string, data []byte, v any) error {
	dc, err := r.documentCodec(key)
	if err != nil {
		return err
	}
	if err := dc.Decode(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Registry) EncodeDocument(key string, v any) ([]byte, error) {
	dc, err := r.documentCodec(key)
	if err != nil {
		return nil, err
	}
	return dc.Encode(v)
}

func (r *Registry) documentCodec(key string) (DocumentCodec, error) {
	c, err := r.For(key)
	if err != nil {
		return nil, err
	}
	dc, ok := c.(DocumentCodec)
	if !ok {
		return nil, &UnsupportedFormatError{Ext: normalizeExt(path.Ext(key)), Op: "documents"}
	}
	return dc, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
