package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/scorecard-dashboard/internal/platform/gcp"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

var newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig

// StorageErrorCode classifies why object storage could not be opened at boot.
type StorageErrorCode string

const (
	StorageErrInvalidMode         StorageErrorCode = "invalid_mode"
	StorageErrMissingBucket       StorageErrorCode = "missing_bucket"
	StorageErrMissingEmulatorHost StorageErrorCode = "missing_emulator_host"
	StorageErrInvalidEmulatorHost StorageErrorCode = "invalid_emulator_host"
	StorageErrConnectFailed       StorageErrorCode = "connect_failed"
	StorageErrLocalRoot           StorageErrorCode = "local_root"
)

var storageErrByConfigCode = map[gcp.ObjectStorageConfigErrorCode]StorageErrorCode{
	gcp.ObjectStorageConfigErrorInvalidMode:         StorageErrInvalidMode,
	gcp.ObjectStorageConfigErrorMissingBucket:       StorageErrMissingBucket,
	gcp.ObjectStorageConfigErrorMissingEmulatorHost: StorageErrMissingEmulatorHost,
	gcp.ObjectStorageConfigErrorInvalidEmulatorHost: StorageErrInvalidEmulatorHost,
}

type StorageError struct {
	Code         StorageErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("object storage unavailable (%s, mode=%q", e.Code, e.Mode)
	if e.EmulatorHost != "" {
		msg += fmt.Sprintf(", emulator=%q", e.EmulatorHost)
	}
	return msg + "): " + fmt.Sprint(e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// storageErrorCode reports the code of a StorageError anywhere in err's chain.
func storageErrorCode(err error) StorageErrorCode {
	var se *StorageError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	return StorageErrConnectFailed
}

// storageProvider is the object store the scorecards live in, plus the bucket
// client behind it when storage is remote.
type storageProvider struct {
	Objects objectstore.Store
	Bucket  gcp.BucketService
}

// resolveObjectStore picks the local data directory or the remote bucket.
// Remote keys are prefixed with DATA_PATH; local keys are not.
func resolveObjectStore(log *logger.Logger, cfg Config) (storageProvider, error) {
	if !cfg.UseRemoteStorage {
		local, err := objectstore.NewLocal(cfg.DataBucket)
		if err != nil {
			return storageProvider{}, &StorageError{Code: StorageErrLocalRoot, Mode: "local", Cause: err}
		}
		log.Info("Object storage selected", "mode", "local", "root", local.Root)
		return storageProvider{Objects: local}, nil
	}

	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return storageProvider{}, err
	}
	return storageProvider{
		Objects: objectstore.WithPrefix(objectstore.NewGCS(bucket), cfg.DataPath),
		Bucket:  bucket,
	}, nil
}

func resolveBucketService(log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	scfg := gcp.ObjectStorageConfig{
		Mode:                  gcp.ObjectStorageMode(strings.TrimSpace(cfg.ObjectStorageMode)),
		Bucket:                strings.TrimSpace(cfg.DataBucket),
		EmulatorHost:          strings.TrimSpace(cfg.StorageEmulatorHost),
		CompatibilityFallback: cfg.StorageModeCompatFallback,
	}
	log = log.With("mode", scfg.Mode, "mode_source", scfg.ModeSource(), "emulator_host", scfg.EmulatorHost)

	if !gcp.IsSupportedObjectStorageMode(scfg.Mode) {
		err := classifyStorageError(scfg, &gcp.ObjectStorageConfigError{
			Code: gcp.ObjectStorageConfigErrorInvalidMode,
			Mode: string(scfg.Mode),
		})
		log.Error("Object storage selection failed", "error_code", storageErrorCode(err), "error", err)
		return nil, err
	}

	log.Info("Object storage selected", "bucket", scfg.Bucket, "data_path", cfg.DataPath, "compatibility_fallback", scfg.CompatibilityFallback)
	bucket, err := newBucketServiceWithConfig(log, scfg)
	if err != nil {
		err = classifyStorageError(scfg, err)
		log.Error("Object storage bootstrap failed", "error_code", storageErrorCode(err), "error", err)
		return nil, err
	}
	return bucket, nil
}

// classifyStorageError wraps err in a StorageError. Config validation errors
// keep their specific code; anything else is a connection failure.
func classifyStorageError(scfg gcp.ObjectStorageConfig, err error) error {
	code := StorageErrConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		if mapped, ok := storageErrByConfigCode[cfgErr.Code]; ok {
			code = mapped
		}
	}
	return &StorageError{Code: code, Mode: string(scfg.Mode), EmulatorHost: scfg.EmulatorHost, Cause: err}
}
