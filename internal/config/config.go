package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends for IDENTITY_BACKEND.
const (
	IdentityMemory = "memory"
	IdentitySQLite = "sqlite"
	IdentityHTTP   = "http"
)

// Backends for STORAGE_BACKEND.
const (
	StorageMemory = "memory"
	StorageMinio  = "minio"
)

// Engines for TEMPLATE_ENGINE.
const (
	TemplatePongo2     = "pongo2"
	TemplateGoTemplate = "go-template"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	IdentityBackend  string        `mapstructure:"IDENTITY_BACKEND"`
	IdentityEndpoint string        `mapstructure:"IDENTITY_ENDPOINT"`
	IdentityProject  string        `mapstructure:"IDENTITY_PROJECT"`
	IdentityAPIKey   string        `mapstructure:"IDENTITY_API_KEY"`
	SQLitePath       string        `mapstructure:"SQLITE_PATH"`
	StorageBackend   string        `mapstructure:"STORAGE_BACKEND"`
	MinioEndpoint    string        `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey   string        `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey   string        `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket      string        `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL      bool          `mapstructure:"MINIO_USE_SSL"`
	MinioPublicURL   string        `mapstructure:"MINIO_PUBLIC_URL"`
	Theme            string        `mapstructure:"THEME"`
	ThemeVariant     string        `mapstructure:"THEME_VARIANT"`
	TemplateEngine   string        `mapstructure:"TEMPLATE_ENGINE"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"IDENTITY_BACKEND", "IDENTITY_ENDPOINT", "IDENTITY_PROJECT", "IDENTITY_API_KEY",
	"SQLITE_PATH",
	"STORAGE_BACKEND", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY",
	"MINIO_BUCKET", "MINIO_USE_SSL", "MINIO_PUBLIC_URL",
	"THEME", "THEME_VARIANT", "TEMPLATE_ENGINE", "HTTP_TIMEOUT",
}

// Load reads the environment, falling back to an optional .env file in the
// working directory.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IDENTITY_BACKEND", IdentityMemory)
	v.SetDefault("SQLITE_PATH", "data/intake.db")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("MINIO_BUCKET", "documents")
	v.SetDefault("THEME", "carepulse")
	v.SetDefault("TEMPLATE_ENGINE", TemplatePongo2)
	v.SetDefault("HTTP_TIMEOUT", "10s")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.IdentityBackend = strings.ToLower(strings.TrimSpace(cfg.IdentityBackend))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.TemplateEngine = strings.ToLower(strings.TrimSpace(cfg.TemplateEngine))
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Validate checks the settings each selected backend depends on.
func (c *Config) Validate() error {
	switch c.IdentityBackend {
	case IdentityMemory:
	case IdentitySQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when IDENTITY_BACKEND is %q", IdentitySQLite)
		}
	case IdentityHTTP:
		if c.IdentityEndpoint == "" || c.IdentityProject == "" {
			return fmt.Errorf("IDENTITY_ENDPOINT and IDENTITY_PROJECT are required when IDENTITY_BACKEND is %q", IdentityHTTP)
		}
	default:
		return fmt.Errorf("IDENTITY_BACKEND must be %q, %q, or %q, got %q", IdentityMemory, IdentitySQLite, IdentityHTTP, c.IdentityBackend)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required when STORAGE_BACKEND is %q", StorageMinio)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StorageMinio, c.StorageBackend)
	}

	switch c.TemplateEngine {
	case "", TemplatePongo2, TemplateGoTemplate:
	default:
		return fmt.Errorf("TEMPLATE_ENGINE must be %q or %q, got %q", TemplatePongo2, TemplateGoTemplate, c.TemplateEngine)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	return nil
}
