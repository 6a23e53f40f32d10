package config

import (
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"auth": map[string]any{
			"codeTtl":       "5m",
			"signingSecret": "",
		},
		"shortLink": map[string]any{
			"baseUrl": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "AUTH_CODETTL", want: "auth.codeTtl"},
		{envKey: "AUTH_SIGNINGSECRET", want: "auth.signingSecret"},
		{envKey: "SHORTLINK_BASEURL", want: "shortLink.baseUrl"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestNormalize_AppliesFloorsAndDefaults(t *testing.T) {
	cfg := &Config{Auth: &AuthConfig{
		SigningSecret: "secret",
		CodeTTL:       time.Second,
		CodeLength:    -3,
	}}

	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}

	if cfg.Auth.CodeTTL != time.Minute {
		t.Errorf("CodeTTL = %v, want floor %v", cfg.Auth.CodeTTL, time.Minute)
	}
	if cfg.Auth.CodeLength != defaultCodeLength {
		t.Errorf("CodeLength = %d, want default %d", cfg.Auth.CodeLength, defaultCodeLength)
	}
	if cfg.Auth.ConnectionLifetime != minConnectionLifetime {
		t.Errorf("ConnectionLifetime = %v, want floor %v", cfg.Auth.ConnectionLifetime, minConnectionLifetime)
	}
	if cfg.Auth.AccessTokenExpiry != time.Minute {
		t.Errorf("AccessTokenExpiry = %v, want floor %v", cfg.Auth.AccessTokenExpiry, time.Minute)
	}
	if cfg.ShortLink == nil || cfg.ShortLink.AliasLength != defaultAliasLength {
		t.Errorf("ShortLink defaults not applied: %+v", cfg.ShortLink)
	}
}

func TestNormalize_RequiresSigningSecret(t *testing.T) {
	cfg := &Config{}
	if err := cfg.normalize(); err == nil {
		t.Fatal("normalize() expected error for missing signing secret")
	}
}
