package infrastructure

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{"SECRET_KEY": "s3cret"}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Port != "8080" || cfg.Addr() != ":8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Algorithm != "HS256" {
		t.Errorf("algorithm = %q", cfg.Algorithm)
	}
	if cfg.IdleTimeout != 60*time.Second || cfg.WriteTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.IdleTimeout, cfg.WriteTimeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if !strings.Contains(cfg.DatabaseURL(), "host=localhost port=5432") || !strings.Contains(cfg.DatabaseURL(), "sslmode=disable") {
		t.Errorf("DatabaseURL() = %q", cfg.DatabaseURL())
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"SECRET_KEY":       "s3cret",
		"PORT":             "9000",
		"ALGORITHM":        "HS512",
		"ALLOWED_ORIGINS":  "http://localhost:3000, http://localhost:5173,,",
		"WS_IDLE_TIMEOUT":  "0s",
		"WS_WRITE_TIMEOUT": "2s",
		"DB_USER":          "kanban",
		"DB_NAME":          "boards",
		"INTERNAL_API_KEY": "k",
	}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	want := []string{"http://localhost:3000", "http://localhost:5173"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.IdleTimeout != 0 || cfg.WriteTimeout != 2*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.IdleTimeout, cfg.WriteTimeout)
	}
	if cfg.Addr() != ":9000" || cfg.Algorithm != "HS512" || cfg.InternalAPIKey != "k" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !strings.Contains(cfg.DatabaseURL(), "user=kanban") || !strings.Contains(cfg.DatabaseURL(), "dbname=boards") {
		t.Errorf("DatabaseURL() = %q", cfg.DatabaseURL())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"bad port":         {"SECRET_KEY": "s", "PORT": "http"},
		"bad algorithm":    {"SECRET_KEY": "s", "ALGORITHM": "RS256"},
		"bad idle timeout": {"SECRET_KEY": "s", "WS_IDLE_TIMEOUT": "soon"},
		"negative timeout": {"SECRET_KEY": "s", "WS_WRITE_TIMEOUT": "-1s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(envMap(env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
