package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"

	"textkit/internal/domain"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "./textkit.yaml"

// Environment variables read by ApplyEnvOverrides and Load.
const (
	EnvConfigPath   = "TEXTKIT_CONFIG"
	EnvAPIURL       = "TEXTKIT_API_URL"
	EnvAPIKey       = "TEXTKIT_API_KEY"
	EnvConfigKey    = "TEXTKIT_CONFIG_KEY"
	EnvLoggerLevel  = "TEXTKIT_LOGGER_LEVEL"
	EnvLoggerOutput = "TEXTKIT_LOGGER_OUTPUT"
	EnvTracerOn     = "TEXTKIT_TRACER_ENABLED"
	EnvTracerExport = "TEXTKIT_TRACER_EXPORTER"
	EnvDefaultModel = "TEXTKIT_DEFAULT_MODEL"
	EnvTargetLang   = "TEXTKIT_TARGET_LANGUAGE"
)

// Config is the top-level application configuration.
type Config struct {
	Backend  BackendConfig `yaml:"backend"`
	Session  SessionConfig `yaml:"session"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Logger   LoggerConfig  `yaml:"logger"`
	Tracer   TracerConfig  `yaml:"tracer"`
	Includes []string      `yaml:"includes,omitempty"`
}

// BackendConfig describes the remote text-processing service.
type BackendConfig struct {
	BaseURL        string               `yaml:"base_url"`
	APIKey         string               `yaml:"api_key"` // optional; "enc:" values are decrypted
	ModifyPath     string               `yaml:"modify_path"`
	TranslatePath  string               `yaml:"translate_path"`
	ConnTimeout    time.Duration        `yaml:"conn_timeout"`
	RespTimeout    time.Duration        `yaml:"resp_timeout"`
	Pool           PoolConfig           `yaml:"pool"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
}

// PoolConfig sizes the HTTP connection pool.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// CircuitBreakerConfig configures the backend circuit breaker.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled"`
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
	// Interval clears failure counts while closed. 0 keeps them until the circuit opens.
	Interval time.Duration `yaml:"interval"`
}

// RateLimitConfig throttles outgoing requests. A zero rate disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// SessionConfig holds text session timing.
type SessionConfig struct {
	MinLength            int           `yaml:"min_length"`
	DebounceDelay        time.Duration `yaml:"debounce_delay"`
	GrammarDebounceDelay time.Duration `yaml:"grammar_debounce_delay"`
	PasteSettle          time.Duration `yaml:"paste_settle"`
	HistoryCapacity      int           `yaml:"history_capacity"`
}

// CatalogConfig lists the selectable models and languages.
type CatalogConfig struct {
	Models              []string `yaml:"models"`
	DefaultModel        string   `yaml:"default_model"`
	MainLanguages       []string `yaml:"main_languages"`
	AdditionalLanguages []string `yaml:"additional_languages"`
	DefaultLanguage     string   `yaml:"default_language"`
}

// Build returns the immutable catalog described by c.
func (c CatalogConfig) Build() domain.Catalog {
	return domain.NewCatalog(c.Models, c.MainLanguages, c.AdditionalLanguages, c.DefaultModel, c.DefaultLanguage)
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout", "file" or "noop"
	Output   string `yaml:"output"`   // file path for the "file" exporter
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	cat := domain.DefaultCatalog()
	return &Config{
		Backend: BackendConfig{
			BaseURL:       "http://localhost:8080",
			ModifyPath:    "/api/text/modify",
			TranslatePath: "/api/text/translate",
			ConnTimeout:   10 * time.Second,
			RespTimeout:   60 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 5,
				Burst:             5,
			},
		},
		Session: SessionConfig{
			MinLength:            3,
			DebounceDelay:        1500 * time.Millisecond,
			GrammarDebounceDelay: 2000 * time.Millisecond,
			PasteSettle:          100 * time.Millisecond,
			HistoryCapacity:      10,
		},
		Catalog: CatalogConfig{
			Models:              cat.Models(),
			DefaultModel:        cat.DefaultModel(),
			MainLanguages:       cat.MainLanguages(),
			AdditionalLanguages: cat.AdditionalLanguages(),
			DefaultLanguage:     cat.DefaultLanguage(),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, applies env var overrides, decrypts secrets
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfigLoad, path, err)
		}
	} else if err := loadFile(cfg, path, data); err != nil {
		return nil, err
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv(EnvConfigKey); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	} else if strings.HasPrefix(cfg.Backend.APIKey, "enc:") {
		return nil, fmt.Errorf("%w: backend.api_key is encrypted but %s is not set", domain.ErrDecryption, EnvConfigKey)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: resolve path: %w", domain.ErrConfigLoad, err)
	}
	if err := validatePermissions(absPath); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}

	// First pass picks up the includes list.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
	}
	if len(cfg.Includes) == 0 {
		return nil
	}

	visited := map[string]bool{absPath: true}
	if err := processIncludes(cfg, filepath.Dir(absPath), visited, 0); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}
	// Second pass: the main file wins over its includes.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
	}
	cfg.Includes = nil
	return nil
}

// ApplyEnvOverrides maps TEXTKIT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv(EnvLoggerLevel); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv(EnvLoggerOutput); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv(EnvTracerOn); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Tracer.Enabled = on
		}
	}
	if v := os.Getenv(EnvTracerExport); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv(EnvDefaultModel); v != "" {
		cfg.Catalog.DefaultModel = v
	}
	if v := os.Getenv(EnvTargetLang); v != "" {
		cfg.Catalog.DefaultLanguage = v
	}
}

// decryptSecrets replaces "enc:..." values with their plaintext.
func decryptSecrets(cfg *Config, passphrase string) error {
	if strings.HasPrefix(cfg.Backend.APIKey, "enc:") {
		decrypted, err := DecryptValue(strings.TrimPrefix(cfg.Backend.APIKey, "enc:"), passphrase)
		if err != nil {
			return fmt.Errorf("backend api_key: %w", err)
		}
		cfg.Backend.APIKey = decrypted
	}
	return nil
}

// EncryptValue encrypts a plaintext value with AES-256-GCM using a passphrase.
// The result is hex(salt) + ":" + hex(nonce+ciphertext), without the "enc:" prefix.
func EncryptValue(plaintext, passphrase string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptValue decrypts a value produced by EncryptValue.
func DecryptValue(encrypted, passphrase string) (string, error) {
	saltHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", fmt.Errorf("%w: invalid encrypted format", domain.ErrDecryption)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("%w: decode salt: %w", domain.ErrDecryption, err)
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %w", domain.ErrDecryption, err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", domain.ErrDecryption)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDecryption, err)
	}
	return string(plaintext), nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// deriveKey uses Argon2id to derive a 32-byte key from passphrase + salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	if mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
