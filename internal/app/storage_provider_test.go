package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/scorecard-dashboard/internal/platform/gcp"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

func TestClassifyStorageError(t *testing.T) {
	cases := []struct {
		name string
		src  error
		want StorageErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageErrInvalidMode},
		{"missing bucket", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingBucket}, StorageErrMissingBucket},
		{"missing emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageErrMissingEmulatorHost},
		{"invalid emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageErrInvalidEmulatorHost},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageErrConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.src)

			var got *StorageError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.src) {
				t.Fatalf("cause not kept: %v", err)
			}
		})
	}
}

func TestResolveBucketServiceInvalidMode(t *testing.T) {
	_, err := resolveBucketService(logger.NewNop(), Config{
		ObjectStorageMode: "invalid",
		DataBucket:        "scorecards",
	})
	if code := storageErrorCode(err); code != StorageErrInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageErrInvalidMode, code, err)
	}
}

func TestResolveBucketServiceEmulatorConfigErrors(t *testing.T) {
	orig := newBucketServiceWithConfig
	t.Cleanup(func() {
		newBucketServiceWithConfig = orig
	})
	newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig

	cases := []struct {
		name string
		cfg  Config
		want StorageErrorCode
	}{
		{
			name: "missing bucket",
			cfg:  Config{ObjectStorageMode: string(gcp.ObjectStorageModeGCS)},
			want: StorageErrMissingBucket,
		},
		{
			name: "missing emulator host",
			cfg:  Config{ObjectStorageMode: string(gcp.ObjectStorageModeGCSEmulator), DataBucket: "scorecards"},
			want: StorageErrMissingEmulatorHost,
		},
		{
			name: "invalid emulator host",
			cfg:  Config{ObjectStorageMode: string(gcp.ObjectStorageModeGCSEmulator), DataBucket: "scorecards", StorageEmulatorHost: "not-a-url"},
			want: StorageErrInvalidEmulatorHost,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolveBucketService(logger.NewNop(), tc.cfg)
			if code := storageErrorCode(err); code != tc.want {
				t.Fatalf("code: want=%q got=%q (err=%v)", tc.want, code, err)
			}
		})
	}
}

func TestResolveObjectStoreRemotePrefixesDataPath(t *testing.T) {
	orig := newBucketServiceWithConfig
	t.Cleanup(func() {
		newBucketServiceWithConfig = orig
	})

	var captured gcp.ObjectStorageConfig
	stub := &testBucketService{objects: map[string]string{}}
	newBucketServiceWithConfig = func(_ *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		captured = cfg
		return stub, nil
	}

	sp, err := resolveObjectStore(logger.NewNop(), Config{
		UseRemoteStorage:    true,
		DataBucket:          "scorecards",
		DataPath:            "policy-dashboard/prod",
		ObjectStorageMode:   string(gcp.ObjectStorageModeGCSEmulator),
		StorageEmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if sp.Bucket != stub {
		t.Fatalf("bucket: expected stub bucket instance")
	}
	if captured.Mode != gcp.ObjectStorageModeGCSEmulator || captured.Bucket != "scorecards" || captured.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("storage config: got=%+v", captured)
	}

	if err := sp.Objects.Put(context.Background(), "saved_scorecards/a.csv", []byte("id\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := stub.objects["policy-dashboard/prod/saved_scorecards/a.csv"]; !ok {
		t.Fatalf("expected prefixed key, got=%v", stub.objects)
	}
}

func TestResolveObjectStoreLocal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "bucket")
	sp, err := resolveObjectStore(logger.NewNop(), Config{DataBucket: root, DataPath: "ignored"})
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if sp.Bucket != nil {
		t.Fatalf("local storage should not open a bucket")
	}
	local, ok := sp.Objects.(*objectstore.Local)
	if !ok || local.Root != root {
		t.Fatalf("objects: want *objectstore.Local at %q, got=%T", root, sp.Objects)
	}
}

type testBucketService struct {
	objects map[string]string
}

func (t *testBucketService) Bucket() string { return "scorecards" }

func (t *testBucketService) Upload(_ context.Context, key string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	t.objects[key] = string(b)
	return nil
}

func (t *testBucketService) Download(_ context.Context, key string) (io.ReadCloser, error) {
	v, ok := t.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

func (t *testBucketService) Delete(_ context.Context, key string) error {
	delete(t.objects, key)
	return nil
}

func (t *testBucketService) Copy(_ context.Context, srcKey, dstKey string) error {
	t.objects[dstKey] = t.objects[srcKey]
	return nil
}

func (t *testBucketService) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for k := range t.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (t *testBucketService) Attrs(_ context.Context, key string) (*gcp.ObjectAttrs, error) {
	v, ok := t.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return &gcp.ObjectAttrs{Size: int64(len(v))}, nil
}

func (t *testBucketService) Close() error { return nil }
