package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yungbote/scorecard-dashboard/internal/platform/envutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/gcp"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const (
	envEnvironment = "ENVIRONMENT"
	envAppName     = "APP_NAME"
	envDataBucket  = "DATA_BUCKET"
	envDataPath    = "DATA_PATH"
	envFilesystem  = "FILESYSTEM"

	defaultEnvironment = "local"
	defaultPort        = "8080"
)

// Config is everything the app reads from the environment.
type Config struct {
	Environment string
	AppName     string
	// DataBucket is the bucket name, or the data root directory when storage is local.
	DataBucket string
	// DataPath prefixes every object key on remote storage. It is ignored locally.
	DataPath         string
	UseRemoteStorage bool

	ObjectStorageMode         string
	StorageEmulatorHost       string
	StorageModeCompatFallback bool

	PolicyCatalogKey string
	Port             string
	PrefixURL        string
	AllowedOrigins   []string

	RedisAddr    string
	RedisChannel string

	SessionJWTSecret string
	TreemapFontPath  string

	LogMode        string
	LogLevel       string
	MetricsEnabled bool
	// MetricsAddr serves /metrics on a separate listener when set.
	MetricsAddr string
	OtelEnabled bool
	Version     string
}

// ConfigError lists required environment variables that are not set.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// LoadDotEnv loads a .env file into the process environment when one exists.
// Variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Environment:         strings.ToLower(envutil.String(envEnvironment, defaultEnvironment)),
		AppName:             envutil.String(envAppName, ""),
		DataBucket:          envutil.String(envDataBucket, ""),
		DataPath:            strings.Trim(envutil.String(envDataPath, ""), "/"),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		PolicyCatalogKey:    envutil.String("POLICY_CATALOG_KEY", ""),
		Port:                envutil.String("PORT", defaultPort),
		PrefixURL:           normalizePrefix(envutil.String("PREFIX_URL", "/")),
		AllowedOrigins:      splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		RedisAddr:           envutil.String("REDIS_ADDR", ""),
		RedisChannel:        envutil.String("REDIS_CHANNEL", ""),
		SessionJWTSecret:    envutil.String("SESSION_JWT_SECRET", ""),
		TreemapFontPath:     envutil.String("TREEMAP_FONT_PATH", ""),
		LogMode:             envutil.String("LOG_MODE", "development"),
		LogLevel:            envutil.String("LOG_LEVEL", "info"),
		MetricsEnabled:      envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:         envutil.String("METRICS_ADDR", ""),
		OtelEnabled:         envutil.Bool("OTEL_ENABLED", false),
		Version:             envutil.String("APP_VERSION", ""),
	}
	cfg.UseRemoteStorage = useRemoteStorage(envutil.String(envFilesystem, ""), cfg.IsLocal())
	cfg.ObjectStorageMode, cfg.StorageModeCompatFallback = resolveStorageMode(
		envutil.String("OBJECT_STORAGE_MODE", ""),
		cfg.StorageEmulatorHost,
	)

	required := []string{envEnvironment, envAppName, envDataBucket}
	if cfg.UseRemoteStorage {
		required = append(required, envDataPath)
	}
	if missing := envutil.Missing(required...); len(missing) > 0 {
		err := &ConfigError{Missing: missing}
		if log != nil {
			log.Error("Invalid configuration", "error", err)
		}
		return cfg, err
	}
	if !cfg.UseRemoteStorage {
		cfg.DataPath = ""
	}

	if log != nil {
		log.Info("Configuration loaded", cfg.Summary()...)
	}
	return cfg, nil
}

func (c Config) IsLocal() bool { return c.Environment == "local" }

func (c Config) IsProd() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// Summary is the configuration as logger key/value pairs, secrets excluded.
func (c Config) Summary() []interface{} {
	return []interface{}{
		"environment", c.Environment,
		"app_name", c.AppName,
		"data_bucket", c.DataBucket,
		"data_path", c.DataPath,
		"remote_storage", c.UseRemoteStorage,
		"object_storage_mode", c.ObjectStorageMode,
		"prefix_url", c.PrefixURL,
		"port", c.Port,
		"redis", c.RedisAddr != "",
		"session_tokens", c.SessionJWTSecret != "",
		"log_level", c.LogLevel,
		"metrics", c.MetricsEnabled,
		"metrics_addr", c.MetricsAddr,
		"otel", c.OtelEnabled,
	}
}

// useRemoteStorage follows FILESYSTEM when it names a backend; otherwise only
// the local environment stays on disk.
func useRemoteStorage(filesystem string, local bool) bool {
	switch strings.ToLower(strings.TrimSpace(filesystem)) {
	case "gcs", "s3", "remote":
		return true
	case "local":
		return false
	default:
		return !local
	}
}

// resolveStorageMode applies gcp.ParseObjectStorageMode. An unknown mode is
// passed through so storage bootstrap reports it with its error code.
func resolveStorageMode(raw, emulatorHost string) (string, bool) {
	mode, fallback, err := gcp.ParseObjectStorageMode(raw, emulatorHost)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw)), false
	}
	return string(mode), fallback
}

// normalizePrefix turns PREFIX_URL into a router group path: "/" becomes "",
// "dash/" becomes "/dash".
func normalizePrefix(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = defaultPort
	}
	return ":" + port
}
