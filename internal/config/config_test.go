package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Chat.DelayMin != time.Second || cfg.Chat.DelayMax != 3*time.Second {
		t.Errorf("unexpected chat delay range %s..%s", cfg.Chat.DelayMin, cfg.Chat.DelayMax)
	}
	if cfg.Chat.FollowUpProbability != 0.5 {
		t.Errorf("expected follow-up probability 0.5, got %.2f", cfg.Chat.FollowUpProbability)
	}
	if cfg.Parser.Delay != 2*time.Second {
		t.Errorf("expected parse delay 2s, got %s", cfg.Parser.Delay)
	}
	if cfg.Sixer.SuccessRate != 0.9 {
		t.Errorf("expected sixer success rate 0.9, got %.2f", cfg.Sixer.SuccessRate)
	}
	if !cfg.PostgreSQL.AutoMigrate {
		t.Error("expected auto-migrate enabled by default")
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_DELAY_MIN", "0s")
	t.Setenv("CHAT_DELAY_MAX", "10ms")
	t.Setenv("PARSE_DELAY", "not-a-duration")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_COMPRESS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Chat.DelayMax != 10*time.Millisecond {
		t.Errorf("expected 10ms, got %s", cfg.Chat.DelayMax)
	}
	if cfg.Parser.Delay != 2*time.Second {
		t.Errorf("invalid duration should fall back to default, got %s", cfg.Parser.Delay)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", origins)
	}
	if cfg.Logging.Compress {
		t.Error("expected compress disabled")
	}
}

func TestLoad_RejectsInvertedDelayRange(t *testing.T) {
	t.Setenv("CHAT_DELAY_MIN", "5s")
	t.Setenv("CHAT_DELAY_MAX", "1s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for inverted delay range")
	}
}

func TestPostgreSQLDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PostgreSQLConfig
		enabled bool
		want    string
	}{
		{
			name:    "explicit dsn",
			cfg:     PostgreSQLConfig{DSN: "postgres://u@db/roomie"},
			enabled: true,
			want:    "postgres://u@db/roomie",
		},
		{
			name:    "assembled",
			cfg:     PostgreSQLConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "roomie", SSLMode: "disable"},
			enabled: true,
			want:    "host=db port=5432 user=u password=p dbname=roomie sslmode=disable",
		},
		{
			name:    "nothing configured",
			cfg:     PostgreSQLConfig{},
			enabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{PostgreSQL: tt.cfg}
			if got := c.PostgreSQLEnabled(); got != tt.enabled {
				t.Fatalf("enabled = %v, want %v", got, tt.enabled)
			}
			if tt.enabled && c.GetPostgreSQLDSN() != tt.want {
				t.Errorf("dsn = %q, want %q", c.GetPostgreSQLDSN(), tt.want)
			}
		})
	}
}
