package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WithRequiredVars(t *testing.T) {
	// Set required env vars
	os.Setenv("JWT_SECRET", "abc123")
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/TodoAppTest")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("MONGODB_URI")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.JWTSecret != "abc123" {
		t.Errorf("expected JWTSecret to be set, got %s", cfg.JWTSecret)
	}

	if cfg.MongoURI != "mongodb://localhost:27017/TodoAppTest" {
		t.Errorf("expected MongoURI to be set, got %s", cfg.MongoURI)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing JWT_SECRET, got nil")
	}
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=\"unterminated\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed .env, got nil")
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "abc123")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/TodoAppTest")

	if _, err := Load(); err != nil {
		t.Fatalf("expected no error without .env, got %v", err)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	os.Setenv("JWT_SECRET", "abc123")
	os.Setenv("STORE_DRIVER", "postgres")
	os.Unsetenv("DATABASE_URL")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("STORE_DRIVER")
	}()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres driver without DATABASE_URL")
	}
}

func TestConfig_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "abc123")
	defer os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("expected default AppEnv 'development', got %s", cfg.AppEnv)
	}

	if cfg.AppPort != 3000 {
		t.Errorf("expected default AppPort 3000, got %d", cfg.AppPort)
	}

	if cfg.StoreDriver != StoreMongo {
		t.Errorf("expected default StoreDriver 'mongo', got %s", cfg.StoreDriver)
	}

	if cfg.MongoURI != "mongodb://localhost:27017/TodoApp" {
		t.Errorf("unexpected default MongoURI %s", cfg.MongoURI)
	}

	if cfg.BcryptCost != 10 {
		t.Errorf("expected default BcryptCost 10, got %d", cfg.BcryptCost)
	}

	if cfg.TokenTTL != 0 {
		t.Errorf("expected tokens without expiry by default, got %s", cfg.TokenTTL)
	}

	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("expected default StoreTimeout 5s, got %s", cfg.StoreTimeout)
	}

	if cfg.LogFormat != "json" {
		t.Errorf("expected default LogFormat 'json', got %s", cfg.LogFormat)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mongo", Config{StoreDriver: StoreMongo, MongoURI: "mongodb://localhost", BcryptCost: 10}, false},
		{"memory", Config{StoreDriver: StoreMemory, BcryptCost: 10}, false},
		{"postgres with url", Config{StoreDriver: StorePostgres, DatabaseURL: "postgres://x", BcryptCost: 10}, false},
		{"postgres without url", Config{StoreDriver: StorePostgres, BcryptCost: 10}, true},
		{"unknown driver", Config{StoreDriver: "sqlite", BcryptCost: 10}, true},
		{"cost too low", Config{StoreDriver: StoreMemory, BcryptCost: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetCORSAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example.com, ,https://b.example.com "}

	got := cfg.GetCORSAllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("unexpected origins: %v", got)
	}

	empty := &Config{}
	if empty.GetCORSAllowedOrigins() != nil {
		t.Error("expected nil origins for empty config")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{AppEnv: "production"}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected production config")
	}

	cfg.AppEnv = "development"
	if cfg.IsProduction() || !cfg.IsDevelopment() {
		t.Error("expected development config")
	}
}
