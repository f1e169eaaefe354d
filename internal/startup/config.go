package startup

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subtitle-burner/internal/burner"
	"subtitle-burner/internal/inputs"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/middleware"
	"subtitle-burner/internal/workers"
)

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	ScratchDir string
	StorageDir string

	FFmpegPath      string
	DefaultStyle    string
	BurnTimeout     time.Duration
	BurnConcurrency int

	VideoFetchTimeout    time.Duration
	SubtitleFetchTimeout time.Duration
	MaxUploadBytes       int64

	PublicBaseURL      string
	CORSAllowedOrigins []string

	// ConfigFile is the TOML file that was loaded, if any.
	ConfigFile string
}

// fileConfig mirrors the environment variables for CONFIG_FILE. Durations
// are Go duration strings; burn_concurrency accepts the same values as
// BURN_CONCURRENCY.
type fileConfig struct {
	Port                 string   `toml:"port"`
	MetricsPort          string   `toml:"metrics_port"`
	MetricsEnabled       *bool    `toml:"metrics_enabled"`
	LogLevel             string   `toml:"log_level"`
	LogHealthChecks      *bool    `toml:"log_health_checks"`
	ScratchDir           string   `toml:"scratch_dir"`
	StorageDir           string   `toml:"storage_dir"`
	FFmpegPath           string   `toml:"ffmpeg_path"`
	DefaultStyle         string   `toml:"default_style"`
	VideoFetchTimeout    string   `toml:"video_fetch_timeout"`
	SubtitleFetchTimeout string   `toml:"subtitle_fetch_timeout"`
	BurnTimeout          string   `toml:"burn_timeout"`
	BurnConcurrency      string   `toml:"burn_concurrency"`
	MaxUploadBytes       int64    `toml:"max_upload_bytes"`
	PublicBaseURL        string   `toml:"public_base_url"`
	CORSAllowedOrigins   []string `toml:"cors_allowed_origins"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Port:                 "8000",
		MetricsPort:          "9090",
		ScratchDir:           filepath.Join(os.TempDir(), "subtitle_api"),
		StorageDir:           filepath.Join(os.TempDir(), "subtitle_api_outputs"),
		FFmpegPath:           "ffmpeg",
		DefaultStyle:         burner.DefaultStyle,
		VideoFetchTimeout:    inputs.DefaultVideoTimeout.String(),
		SubtitleFetchTimeout: inputs.DefaultSubtitleTimeout.String(),
		BurnTimeout:          "0s",
		BurnConcurrency:      "0",
		CORSAllowedOrigins:   []string{"*"},
	}
}

// readConfigFile decodes path over base. Unknown keys are rejected so a
// misspelled setting does not silently fall back to its default.
func readConfigFile(path string, base fileConfig) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg := base
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return base, fmt.Errorf("parse config file: %s", strict.String())
		}
		return base, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads and validates configuration from CONFIG_FILE and the
// environment.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config, err := resolveConfig()
	if err != nil {
		return nil, err
	}

	if config.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:            %s", config.ConfigFile)
	}
	logging.Info("  PORT:                   %s", config.Port)
	logging.Info("  METRICS_PORT:           %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:        %v", config.MetricsEnabled)
	logging.Info("  SCRATCH_DIR:            %s", config.ScratchDir)
	logging.Info("  STORAGE_DIR:            %s", config.StorageDir)
	logging.Info("  FFMPEG_PATH:            %s", config.FFmpegPath)
	logging.Info("  DEFAULT_STYLE:          %s", config.DefaultStyle)
	logging.Info("  VIDEO_FETCH_TIMEOUT:    %v", config.VideoFetchTimeout)
	logging.Info("  SUBTITLE_FETCH_TIMEOUT: %v", config.SubtitleFetchTimeout)
	logging.Info("  BURN_TIMEOUT:           %s", durationOrNone(config.BurnTimeout))
	logging.Info("  BURN_CONCURRENCY:       %s", countOrUnlimited(config.BurnConcurrency))
	logging.Info("  MAX_UPLOAD_BYTES:       %s", bytesOrUnlimited(config.MaxUploadBytes))
	logging.Info("  PUBLIC_BASE_URL:        %s", orFromRequest(config.PublicBaseURL))
	logging.Info("  CORS_ALLOWED_ORIGINS:   %s", strings.Join(config.CORSAllowedOrigins, ", "))
	logging.Info("  LOG_HEALTH_CHECKS:      %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	return config, nil
}

// resolveConfig layers defaults, CONFIG_FILE and environment variables.
func resolveConfig() (*Config, error) {
	file := defaultFileConfig()
	configPath := getEnv("CONFIG_FILE", "")
	if configPath != "" {
		var err error
		if file, err = readConfigFile(configPath, file); err != nil {
			return nil, err
		}
	}

	if level := getEnv("LOG_LEVEL", file.LogLevel); level != "" {
		if parsed, ok := logging.ParseLevel(level); ok {
			logging.SetLevel(parsed)
		} else {
			logging.Warn("  Invalid LOG_LEVEL %q, keeping %s", level, logging.GetLevel())
		}
	}

	config := &Config{
		ConfigFile:      configPath,
		Port:            getEnv("PORT", file.Port),
		MetricsPort:     getEnv("METRICS_PORT", file.MetricsPort),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", boolOr(file.MetricsEnabled, true)),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", boolOr(file.LogHealthChecks, true)),
		FFmpegPath:      getEnv("FFMPEG_PATH", file.FFmpegPath),
		DefaultStyle:    getEnv("DEFAULT_STYLE", file.DefaultStyle),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", file.PublicBaseURL), "/"),

		VideoFetchTimeout:    getEnvDuration("VIDEO_FETCH_TIMEOUT", file.VideoFetchTimeout, inputs.DefaultVideoTimeout),
		SubtitleFetchTimeout: getEnvDuration("SUBTITLE_FETCH_TIMEOUT", file.SubtitleFetchTimeout, inputs.DefaultSubtitleTimeout),
		BurnTimeout:          getEnvDuration("BURN_TIMEOUT", file.BurnTimeout, 0),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORSAllowedOrigins = middleware.ParseOrigins(origins)
	} else {
		config.CORSAllowedOrigins = middleware.ParseOrigins(strings.Join(file.CORSAllowedOrigins, ","))
	}

	concurrency, err := workers.Parse(getEnv("BURN_CONCURRENCY", file.BurnConcurrency))
	if err != nil {
		return nil, fmt.Errorf("BURN_CONCURRENCY: %w", err)
	}
	config.BurnConcurrency = concurrency

	config.MaxUploadBytes = file.MaxUploadBytes
	if raw := getEnv("MAX_UPLOAD_BYTES", ""); raw != "" {
		if config.MaxUploadBytes, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES: invalid byte count %q", raw)
		}
	}

	if config.ScratchDir, err = filepath.Abs(getEnv("SCRATCH_DIR", file.ScratchDir)); err != nil {
		return nil, fmt.Errorf("failed to resolve scratch directory path: %w", err)
	}
	if config.StorageDir, err = filepath.Abs(getEnv("STORAGE_DIR", file.StorageDir)); err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory path: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be negative")
	}
	if c.BurnTimeout < 0 {
		return fmt.Errorf("BURN_TIMEOUT must not be negative")
	}
	if c.MetricsEnabled && c.MetricsPort == c.Port {
		return fmt.Errorf("METRICS_PORT and PORT must differ (both %s)", c.Port)
	}
	if c.ScratchDir == c.StorageDir {
		return fmt.Errorf("SCRATCH_DIR and STORAGE_DIR must differ")
	}
	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("PUBLIC_BASE_URL must be an absolute http or https URL, got %q", c.PublicBaseURL)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration parses the env value, else fileValue, else returns
// fallback. Unparseable values log a warning and use fallback.
func getEnvDuration(key, fileValue string, fallback time.Duration) time.Duration {
	value := getEnv(key, fileValue)
	if value == "" {
		return fallback
	}
	if value == "0" {
		return 0
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		logging.Warn("  Invalid %s %q, using default: %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func durationOrNone(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}

func countOrUnlimited(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}

func bytesOrUnlimited(n int64) string {
	if n <= 0 {
		return "unlimited"
	}
	return formatBytes(n)
}

func orFromRequest(s string) string {
	if s == "" {
		return "(derived from request)"
	}
	return s
}

// formatBytes formats bytes into human-readable format
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
