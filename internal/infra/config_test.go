package infra

import (
	"testing"
	"time"
)

func clearRecordEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RECORD_BACKEND", "")
	t.Setenv("PURCHASE_SIGNING_KEY", "")
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	clearRecordEnv(t)
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig() expected error without JWT_SECRET")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearRecordEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SUGGESTION_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RecordBackend != RecordBackendNone {
		t.Fatalf("RecordBackend = %q, want %q", cfg.RecordBackend, RecordBackendNone)
	}
	if cfg.SuggestionTimeout != 15*time.Second {
		t.Fatalf("SuggestionTimeout = %s, want 15s", cfg.SuggestionTimeout)
	}
	if cfg.PurchaseSigningKey != "test-secret" {
		t.Fatalf("PurchaseSigningKey should fall back to JWT secret, got %q", cfg.PurchaseSigningKey)
	}
}

func TestLoadConfigRecordBackendSelection(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{name: "database implies postgres", env: map[string]string{"DATABASE_URL": "postgres://example"}, want: RecordBackendPostgres},
		{name: "redis wins over database", env: map[string]string{"DATABASE_URL": "postgres://example", "REDIS_ADDR": "localhost:6379"}, want: RecordBackendRedis},
		{name: "explicit memory", env: map[string]string{"RECORD_BACKEND": "memory"}, want: RecordBackendMemory},
		{name: "postgres without url", env: map[string]string{"RECORD_BACKEND": "postgres"}, wantErr: true},
		{name: "redis without addr", env: map[string]string{"RECORD_BACKEND": "redis"}, wantErr: true},
		{name: "unknown backend", env: map[string]string{"RECORD_BACKEND": "cloud"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearRecordEnv(t)
			t.Setenv("JWT_SECRET", "test-secret")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("LoadConfig() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig returned error: %v", err)
			}
			if cfg.RecordBackend != tc.want {
				t.Fatalf("RecordBackend = %q, want %q", cfg.RecordBackend, tc.want)
			}
		})
	}
}

func TestLoadConfigAllowedOrigins(t *testing.T) {
	clearRecordEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v, want %#v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
