// Package config loads the command declarations and the runtime settings.
// Runtime settings come from env vars; every field has a safe default so the
// binary runs locally without any env setup.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var ErrInvalidSetting = errors.New("invalid setting")

// Config holds runtime settings for the server.
type Config struct {
	Transport string     // MCP_TRANSPORT: stdio | http (default stdio)
	HTTPAddr  string     // MCP_HTTP_ADDR (default 127.0.0.1:8080)
	LogLevel  slog.Level // MCP_LOG_LEVEL (default info)
	LogFormat string     // MCP_LOG_FORMAT: auto | text | json

	// Executor limits. Zero means unbounded.
	MaxOutput   int64         // MCP_MAX_OUTPUT, e.g. "4MiB"
	ExecTimeout time.Duration // MCP_EXEC_TIMEOUT, e.g. "30s"
	ExecEnv     []string      // MCP_EXEC_ENV, comma separated KEY=VALUE added to every child

	HistoryDB string // MCP_HISTORY_DB; empty disables history

	// HTTP transport auth and throttling.
	JWTSecret    string   // MCP_JWT_SECRET
	APIKeyHashes []string // MCP_API_KEY_HASHES, comma separated bcrypt hashes
	RateLimit    float64  // MCP_HTTP_RATE_LIMIT, requests per second; 0 disables
	Burst        int      // MCP_HTTP_BURST
}

const (
	envKeyTransport    = "MCP_TRANSPORT"
	envKeyHTTPAddr     = "MCP_HTTP_ADDR"
	envKeyLogLevel     = "MCP_LOG_LEVEL"
	envKeyLogFormat    = "MCP_LOG_FORMAT"
	envKeyMaxOutput    = "MCP_MAX_OUTPUT"
	envKeyExecTimeout  = "MCP_EXEC_TIMEOUT"
	envKeyExecEnv      = "MCP_EXEC_ENV"
	envKeyHistoryDB    = "MCP_HISTORY_DB"
	envKeyJWTSecret    = "MCP_JWT_SECRET"
	envKeyAPIKeyHashes = "MCP_API_KEY_HASHES"
	envKeyRateLimit    = "MCP_HTTP_RATE_LIMIT"
	envKeyBurst        = "MCP_HTTP_BURST"

	// EnvKeyCommandsConfig holds either inline JSON or a path to the commands document.
	EnvKeyCommandsConfig = "MCP_COMMANDS_CONFIG"
)

// Load reads runtime settings from environment variables, applying defaults for missing values.
func Load() (Config, error) {
	cfg := Config{
		Transport: strings.ToLower(envOr(envKeyTransport, TransportStdio)),
		HTTPAddr:  envOr(envKeyHTTPAddr, "127.0.0.1:8080"),
		LogFormat: strings.ToLower(envOr(envKeyLogFormat, LogFormatAuto)),
		HistoryDB: os.Getenv(envKeyHistoryDB),
		JWTSecret: os.Getenv(envKeyJWTSecret),
		Burst:     1,
	}

	var errs []error
	if err := cfg.LogLevel.UnmarshalText([]byte(envOr(envKeyLogLevel, "info"))); err != nil {
		errs = append(errs, settingError(envKeyLogLevel, err))
	}
	if v := os.Getenv(envKeyMaxOutput); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			errs = append(errs, settingError(envKeyMaxOutput, err))
		}
		cfg.MaxOutput = int64(n)
	}
	if v := os.Getenv(envKeyExecTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, settingError(envKeyExecTimeout, err))
		}
		cfg.ExecTimeout = d
	}
	if v := os.Getenv(envKeyRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, settingError(envKeyRateLimit, err))
		}
		cfg.RateLimit = f
	}
	if v := os.Getenv(envKeyBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, settingError(envKeyBurst, err))
		}
		cfg.Burst = n
	}
	cfg.APIKeyHashes = splitList(os.Getenv(envKeyAPIKeyHashes))
	cfg.ExecEnv = splitList(os.Getenv(envKeyExecEnv))

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

// Validate checks value ranges and enums. Load calls it; flag overrides
// applied afterwards should call it again.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("%w: transport %q (want stdio or http)", ErrInvalidSetting, c.Transport))
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: log format %q (want auto, text or json)", ErrInvalidSetting, c.LogFormat))
	}
	if c.MaxOutput < 0 {
		errs = append(errs, fmt.Errorf("%w: max output must not be negative", ErrInvalidSetting))
	}
	if c.ExecTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: exec timeout must not be negative", ErrInvalidSetting))
	}
	for _, kv := range c.ExecEnv {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			errs = append(errs, fmt.Errorf("%w: exec env entry %q (want KEY=VALUE)", ErrInvalidSetting, kv))
		}
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: rate limit must not be negative", ErrInvalidSetting))
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		errs = append(errs, fmt.Errorf("%w: burst must be at least 1 when rate limiting", ErrInvalidSetting))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether the HTTP transport requires a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != "" || len(c.APIKeyHashes) > 0
}

func settingError(key string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidSetting, key, err)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
