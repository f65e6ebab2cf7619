package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %s", cfg.Port)
	}
	if cfg.IdentityBackend != IdentityMemory || cfg.StorageBackend != StorageMemory {
		t.Errorf("expected memory backends, got %s/%s", cfg.IdentityBackend, cfg.StorageBackend)
	}
	if cfg.TemplateEngine != TemplatePongo2 {
		t.Errorf("expected pongo2 engine, got %s", cfg.TemplateEngine)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("IDENTITY_BACKEND", "SQLite")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
	if cfg.IdentityBackend != IdentitySQLite {
		t.Errorf("expected sqlite backend, got %s", cfg.IdentityBackend)
	}
	if !cfg.MinioUseSSL {
		t.Error("expected MINIO_USE_SSL to be true")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("THEME_VARIANT=contrast\nIDENTITY_PROJECT=carepulse\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ThemeVariant != "contrast" || cfg.IdentityProject != "carepulse" {
		t.Errorf("env file not applied: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{IdentityBackend: IdentityMemory, StorageBackend: StorageMemory}, false},
		{"http without endpoint", Config{IdentityBackend: IdentityHTTP, StorageBackend: StorageMemory}, true},
		{"http", Config{IdentityBackend: IdentityHTTP, IdentityEndpoint: "https://x/v1", IdentityProject: "p", StorageBackend: StorageMemory}, false},
		{"minio without endpoint", Config{IdentityBackend: IdentityMemory, StorageBackend: StorageMinio, MinioBucket: "d"}, true},
		{"unknown identity", Config{IdentityBackend: "ldap", StorageBackend: StorageMemory}, true},
		{"unknown storage", Config{IdentityBackend: IdentityMemory, StorageBackend: "ftp"}, true},
		{"go-template engine", Config{IdentityBackend: IdentityMemory, StorageBackend: StorageMemory, TemplateEngine: TemplateGoTemplate}, false},
		{"unknown engine", Config{IdentityBackend: IdentityMemory, StorageBackend: StorageMemory, TemplateEngine: "jet"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}
	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
