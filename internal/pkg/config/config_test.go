package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/postboard/postboard-api/internal/core/domain"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": validSecret,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "" {
		t.Errorf("admin = %+v", cfg.Admin)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("bcrypt cost = %d", cfg.BcryptCost)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeout)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis must be disabled by default, got %q", cfg.Redis.Addr)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         validSecret,
		"STORE_DRIVER":       " SQLite ",
		"SQLITE_PATH":        "/tmp/x.db",
		"POSTGRES_MAX_CONNS": "25",
		"ADMIN_PASSWORD":     "s3cret",
		"REDIS_ADDR":         "redis:6379",
		"SHUTDOWN_TIMEOUT":   "3s",
		"ENV":                "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Driver != DriverSQLite || cfg.SQLite.Path != "/tmp/x.db" {
		t.Errorf("store = %+v / %+v", cfg.Store, cfg.SQLite)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("max conns = %d", cfg.Postgres.MaxConns)
	}
	if cfg.Admin.Password != "s3cret" || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("admin/redis not read: %+v %+v", cfg.Admin, cfg.Redis)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeout)
	}
	if cfg.IsDevelopment() {
		t.Error("production must not be development")
	}
}

func TestLoadFrom_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"short secret":   {"JWT_SECRET": "short"},
		"unknown driver": {"JWT_SECRET": validSecret, "STORE_DRIVER": "cassandra"},
		"bcrypt cost":    {"JWT_SECRET": validSecret, "BCRYPT_COST": "40"},
		"bad duration":   {"JWT_SECRET": validSecret, "SHUTDOWN_TIMEOUT": "soon"},
		"zero shutdown":  {"JWT_SECRET": validSecret, "SHUTDOWN_TIMEOUT": "0s"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
