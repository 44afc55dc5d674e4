package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ObjectStorageConfig selects how the scorecard data bucket is reached.
type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	Bucket       string
	EmulatorHost string
	// CompatibilityFallback is set when the mode was inferred from
	// STORAGE_EMULATOR_HOST rather than named in OBJECT_STORAGE_MODE.
	CompatibilityFallback bool
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	return mode == ObjectStorageModeGCS || mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingBucket:
		return "cloud object storage requires DATA_BUCKET to be set"
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	}
	return "invalid object storage config"
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ParseObjectStorageMode normalizes raw. A blank mode means emulator when an
// emulator host is known, plain GCS otherwise; fallback reports the former.
func ParseObjectStorageMode(raw, emulatorHost string) (mode ObjectStorageMode, fallback bool, err error) {
	mode = ObjectStorageMode(strings.ToLower(strings.TrimSpace(raw)))
	switch {
	case mode == "" && strings.TrimSpace(emulatorHost) != "":
		return ObjectStorageModeGCSEmulator, true, nil
	case mode == "":
		return ObjectStorageModeGCS, false, nil
	case IsSupportedObjectStorageMode(mode):
		return mode, false, nil
	}
	return mode, false, &ObjectStorageConfigError{
		Code: ObjectStorageConfigErrorInvalidMode,
		Mode: strings.TrimSpace(raw),
	}
}

// ValidateObjectStorageConfig checks, in order: the mode, the bucket, and for
// emulator mode an absolute emulator URL.
func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	fail := func(code ObjectStorageConfigErrorCode, cause error) error {
		return &ObjectStorageConfigError{Code: code, Mode: string(cfg.Mode), EmulatorHost: cfg.EmulatorHost, Cause: cause}
	}
	switch {
	case !IsSupportedObjectStorageMode(cfg.Mode):
		return fail(ObjectStorageConfigErrorInvalidMode, nil)
	case strings.TrimSpace(cfg.Bucket) == "":
		return fail(ObjectStorageConfigErrorMissingBucket, nil)
	case !cfg.IsEmulatorMode():
		return nil
	case cfg.EmulatorHost == "":
		return fail(ObjectStorageConfigErrorMissingEmulatorHost, nil)
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fail(ObjectStorageConfigErrorInvalidEmulatorHost, err)
	}
	return nil
}
