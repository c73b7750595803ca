package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FahadBinHussain/Xenovate/internal/config"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "  env-key  ")
	t.Setenv(EnvBaseURL, "https://proxy.example.com")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvModels, "m1, m2,,m3")
	t.Setenv(EnvUsageDSN, "sqlite:///tmp/usage.db")
	t.Setenv(EnvAccessKeys, "a,b")

	cfg := config.NewDefaultConfig()
	ApplyEnvOverrides(cfg)

	if cfg.Upstream.APIKey != "env-key" {
		t.Errorf("expected trimmed api key, got %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.BaseURL != "https://proxy.example.com" {
		t.Errorf("unexpected base url %q", cfg.Upstream.BaseURL)
	}
	if cfg.Port != 9090 || !cfg.Debug {
		t.Errorf("unexpected port/debug %d/%v", cfg.Port, cfg.Debug)
	}
	if len(cfg.Models) != 3 || cfg.Models[0].Name != "m1" || cfg.Models[2].Priority != 3 {
		t.Errorf("unexpected models %+v", cfg.Models)
	}
	if cfg.Usage.DSN != "sqlite:///tmp/usage.db" {
		t.Errorf("unexpected dsn %q", cfg.Usage.DSN)
	}
	if len(cfg.APIKeys) != 2 {
		t.Errorf("unexpected access keys %v", cfg.APIKeys)
	}
}

func TestApplyEnvOverrides_IgnoresEmptyAndInvalid(t *testing.T) {
	t.Setenv(EnvAPIKey, "   ")
	t.Setenv(EnvPort, "not-a-port")

	cfg := config.NewDefaultConfig()
	ApplyEnvOverrides(cfg)

	if cfg.CredentialConfigured() {
		t.Error("blank env key must not configure a credential")
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
}

func TestBootstrap_MissingConfigFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "k")
	path := filepath.Join(t.TempDir(), "missing.yaml")

	res, err := Bootstrap(path)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.ConfigFilePath != path || !res.Config.CredentialConfigured() {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBootstrap_InvalidOverride(t *testing.T) {
	t.Setenv(EnvUpstreamType, "openai")
	t.Setenv(EnvBaseURL, "")

	if _, err := Bootstrap(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected validation error for openai without base url")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/etc/x.yaml", "/wd"); got != "/etc/x.yaml" {
		t.Errorf("flag should win, got %q", got)
	}
	t.Setenv(EnvConfigPath, "/env/config.yaml")
	if got := ResolveConfigPath("", "/wd"); got != "/env/config.yaml" {
		t.Errorf("env should win over default, got %q", got)
	}
	t.Setenv(EnvConfigPath, "")
	if got := ResolveConfigPath("", "/wd"); got != filepath.Join("/wd", "config.yaml") {
		t.Errorf("unexpected default %q", got)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefaultConfig(path, false); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	if err := WriteDefaultConfig(path, false); err == nil {
		t.Error("expected refusal to overwrite without force")
	}
	if err := WriteDefaultConfig(path, true); err != nil {
		t.Errorf("force overwrite: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if len(cfg.Models) == 0 {
		t.Error("expected default models in generated config")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}
