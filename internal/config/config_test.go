package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Port)
	}
	if cfg.APIPrefix != "/api" {
		t.Errorf("expected /api prefix, got %q", cfg.APIPrefix)
	}
	if cfg.Store.Driver != DriverMariaDB {
		t.Errorf("expected mariadb driver, got %q", cfg.Store.Driver)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("expected dev secret fallback")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}
}

func TestLoad_ProductionRejectsShortSecret(t *testing.T) {
	t.Setenv("ENV", "Prod")
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "32 characters") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("API_PREFIX", "/v1/")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("MONGO_DB_NAME", "contacts-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != DriverMongo {
		t.Errorf("expected mongo driver, got %q", cfg.Store.Driver)
	}
	if cfg.APIPrefix != "/v1" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIPrefix)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute {
		t.Errorf("expected 15m ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Store.Mongo.Database != "contacts-test" {
		t.Errorf("expected mongo db override, got %q", cfg.Store.Mongo.Database)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p@ss", Name: "contacts"}
	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db:3306)") {
		t.Errorf("expected default port appended, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime=true, got %s", dsn)
	}

	d.dsnOverride = "root:root@tcp(other:3307)/x"
	if d.DSN() != d.dsnOverride {
		t.Errorf("expected DATABASE_URL override, got %s", d.DSN())
	}
}
