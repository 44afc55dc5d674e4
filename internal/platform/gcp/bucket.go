package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("gcs object not found")

const (
	writeTimeout = 2 * time.Minute
	readTimeout  = 2 * time.Minute
	metaTimeout  = 30 * time.Second
)

// BucketService is the narrow view of the data bucket that scorecards live in.
type BucketService interface {
	Bucket() string
	Upload(ctx context.Context, key string, body io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Attrs(ctx context.Context, key string) (*ObjectAttrs, error)
	Close() error
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	// emu serves reads directly over the emulator's JSON API when set.
	emu *emulatorREST
}

func NewBucketServiceWithConfig(log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	bs := &bucketService{
		log:    log.With("service", "BucketService", "bucket", strings.TrimSpace(cfg.Bucket)),
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
	}
	if cfg.IsEmulatorMode() {
		bs.emu = newEmulatorREST(cfg.EmulatorHost, bs.bucket, http.DefaultClient)
	}
	bs.log.Info("Object storage ready", "mode", cfg.Mode, "mode_source", cfg.ModeSource(), "emulator_host", cfg.EmulatorHost)
	return bs, nil
}

func newStorageClient(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := append(credentialOptions(os.Getenv), option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client only honours the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (bs *bucketService) Bucket() string { return bs.bucket }

func (bs *bucketService) Close() error {
	if bs.client == nil {
		return nil
	}
	return bs.client.Close()
}

func (bs *bucketService) object(key string) *storage.ObjectHandle {
	return bs.client.Bucket(bs.bucket).Object(key)
}

// notFound maps the client's missing-object error onto ErrObjectNotFound.
func notFound(op, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%s %q: %w", op, key, ErrObjectNotFound)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}

func (bs *bucketService) Upload(ctx context.Context, key string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	w := bs.object(key).NewWriter(ctx)
	w.ContentType = ContentTypeForKey(key)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish upload %q: %w", key, err)
	}
	return nil
}

var contentTypes = map[string]string{
	".csv":     "text/csv",
	".json":    "application/json",
	".geojson": "application/geo+json",
	".yaml":    "application/yaml",
	".yml":     "application/yaml",
	".xlsx":    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":     "application/vnd.ms-excel",
	".png":     "image/png",
}

// ContentTypeForKey guesses a content type from the key's extension.
func ContentTypeForKey(key string) string {
	return contentTypes[strings.ToLower(path.Ext(strings.TrimSpace(key)))]
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()
	if err := bs.object(key).Delete(ctx); err != nil {
		return notFound("delete", key, err)
	}
	return nil
}

func (bs *bucketService) Copy(ctx context.Context, srcKey, dstKey string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := bs.object(dstKey).CopierFrom(bs.object(srcKey)).Run(ctx); err != nil {
		return notFound("copy to "+dstKey+" from", srcKey, err)
	}
	return nil
}

func (bs *bucketService) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()
	it := bs.client.Bucket(bs.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	keys := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
}

// cancelOnClose keeps the read deadline alive until the caller closes the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r cancelOnClose) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}

func (bs *bucketService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	var (
		body io.ReadCloser
		err  error
	)
	if bs.emu != nil {
		body, err = bs.emu.media(ctx, key)
	} else {
		body, err = bs.object(key).NewReader(ctx)
		if err != nil {
			err = notFound("download", key, err)
		}
	}
	if err != nil {
		cancel()
		return nil, err
	}
	return cancelOnClose{ReadCloser: body, cancel: cancel}, nil
}

func (bs *bucketService) Attrs(ctx context.Context, key string) (*ObjectAttrs, error) {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()
	if bs.emu != nil {
		return bs.emu.attrs(ctx, key)
	}
	attrs, err := bs.object(key).Attrs(ctx)
	if err != nil {
		return nil, notFound("attrs", key, err)
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}
