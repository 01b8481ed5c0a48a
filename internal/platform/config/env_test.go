package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"MODELHUB_TEST_PORT" envDefault:"123"`
}

type prefixedTestConfig struct {
	Issuer string `env:"ISSUER" envDefault:"modelhub"`
	Secret string `env:"SECRET"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("MODELHUB_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvPrefixed(t *testing.T) {
	var cfg prefixedTestConfig
	t.Setenv("MODELHUB_TEST_SESSION_SECRET", "s3cret")

	if err := ParseEnvPrefixed(&cfg, "MODELHUB_TEST_SESSION_"); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Secret != "s3cret" {
		t.Fatalf("Secret = %q, want %q", cfg.Secret, "s3cret")
	}
	if cfg.Issuer != "modelhub" {
		t.Fatalf("Issuer = %q, want %q", cfg.Issuer, "modelhub")
	}
}
