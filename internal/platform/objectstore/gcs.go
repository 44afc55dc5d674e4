package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"

	"github.com/yungbote/scorecard-dashboard/internal/platform/gcp"
)

// GCS adapts a gcp.BucketService to Store.
type GCS struct {
	bucket gcp.BucketService
}

func NewGCS(bucket gcp.BucketService) *GCS {
	return &GCS{bucket: bucket}
}

func mapGCSErr(err error) error {
	if errors.Is(err, gcp.ErrObjectNotFound) {
		return ErrNotExist
	}
	return err
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := g.bucket.Download(ctx, key)
	if err != nil {
		return nil, ioError("get", key, mapGCSErr(err))
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, ioError("get", key, err)
	}
	return data, nil
}

func (g *GCS) Put(ctx context.Context, key string, data []byte) error {
	return ioError("put", key, g.bucket.Upload(ctx, key, bytes.NewReader(data)))
}

func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := g.bucket.ListKeys(ctx, prefix)
	if err != nil {
		return nil, ioError("list", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (g *GCS) Copy(ctx context.Context, src, dst string) error {
	return ioError("copy", src, mapGCSErr(g.bucket.Copy(ctx, src, dst)))
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	return ioError("delete", key, mapGCSErr(g.bucket.Delete(ctx, key)))
}

func (g *GCS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.bucket.Attrs(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gcp.ErrObjectNotFound) {
		return false, nil
	}
	return false, ioError("stat", key, err)
}
