// Package bootstrap loads .env, the config file and environment overrides
// for the xenovate commands.
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/FahadBinHussain/Xenovate/internal/cli/env"
	"github.com/FahadBinHussain/Xenovate/internal/config"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvAPIKey        = "GEMINI_API_KEY"
	EnvBaseURL       = "GEMINI_BASE_URL"
	EnvConfigPath    = "XENOVATE_CONFIG"
	EnvUpstreamType  = "XENOVATE_UPSTREAM_TYPE"
	EnvPort          = "XENOVATE_PORT"
	EnvDebug         = "XENOVATE_DEBUG"
	EnvModels        = "XENOVATE_MODELS"
	EnvProxyURL      = "XENOVATE_PROXY_URL"
	EnvUsageDSN      = "XENOVATE_USAGE_DSN"
	EnvLoggingToFile = "XENOVATE_LOGGING_TO_FILE"
	EnvAccessKeys    = "XENOVATE_API_KEYS"
)

// Result contains the result of bootstrapping the application.
type Result struct {
	Config         *config.Config
	ConfigFilePath string
}

// Bootstrap resolves the config path (flag, then $XENOVATE_CONFIG, then
// ./config.yaml), loads it if present and applies environment overrides.
// A missing config file is not an error.
func Bootstrap(configPath string) (*Result, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	configFilePath := ResolveConfigPath(configPath, wd)
	cfg, err := config.LoadConfigOptional(configFilePath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ApplyEnvOverrides(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.CredentialConfigured() {
		log.Warnf("%s is not set; code operations will answer 500 until it is configured", EnvAPIKey)
	}

	return &Result{
		Config:         cfg,
		ConfigFilePath: configFilePath,
	}, nil
}

// ResolveConfigPath picks the config file location.
func ResolveConfigPath(flagPath, wd string) string {
	if flagPath != "" {
		return flagPath
	}
	if p, ok := env.LookupEnv(EnvConfigPath); ok {
		return p
	}
	return filepath.Join(wd, "config.yaml")
}

// ApplyEnvOverrides applies environment variable overrides on top of the file.
// Secret values are never logged.
func ApplyEnvOverrides(cfg *config.Config) {
	if key, ok := env.LookupEnv(EnvAPIKey); ok {
		cfg.Upstream.APIKey = key
		log.Infof("Upstream API key set from env")
	}

	if baseURL, ok := env.LookupEnv(EnvBaseURL); ok {
		cfg.Upstream.BaseURL = baseURL
		log.Infof("Upstream base URL overridden by env: %s", baseURL)
	}

	if t, ok := env.LookupEnv(EnvUpstreamType); ok {
		cfg.Upstream.Type = config.UpstreamType(t)
		log.Infof("Upstream type overridden by env: %s", t)
	}

	if port, ok := env.LookupEnvInt(EnvPort); ok {
		cfg.Port = port
		log.Infof("Port overridden by env: %d", port)
	}

	if debug, ok := env.LookupEnvBool(EnvDebug); ok {
		cfg.Debug = debug
		log.Infof("Debug overridden by env: %v", debug)
	}

	if models, ok := env.LookupEnvList(EnvModels); ok {
		cfg.Models = config.ModelsFromNames(models)
		log.Infof("Models overridden by env: %d candidates", len(cfg.Models))
	}

	if proxyURL, ok := env.LookupEnv(EnvProxyURL); ok {
		cfg.Upstream.ProxyURL = proxyURL
		log.Infof("Proxy URL overridden by env")
	}

	if dsn, ok := env.LookupEnv(EnvUsageDSN); ok {
		cfg.Usage.DSN = dsn
		log.Infof("Usage DSN overridden by env")
	}

	if loggingToFile, ok := env.LookupEnvBool(EnvLoggingToFile); ok {
		cfg.LoggingToFile = loggingToFile
		log.Infof("Logging to file overridden by env: %v", loggingToFile)
	}

	if keys, ok := env.LookupEnvList(EnvAccessKeys); ok {
		cfg.APIKeys = keys
		log.Infof("API keys overridden by env: %d keys", len(cfg.APIKeys))
	}
}

// WriteDefaultConfig writes the commented default config to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, config.GenerateDefaultConfigYAML(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
