package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file looked up inside the configuration directory.
const ConfigFileName = "contractgen.yaml"

// ContractgenYAMLConfig represents the complete contractgen.yaml file structure
type ContractgenYAMLConfig struct {
	Server   *ServerConfig   `yaml:"server"`
	Upstream *UpstreamConfig `yaml:"upstream"`
	Relay    *RelayConfig    `yaml:"relay"`
	Auth     *AuthConfig     `yaml:"auth"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load contractgen.yaml from configDir (a missing file means all defaults)
//  2. Expand {{.VAR}} environment references
//  3. Parse YAML into structs
//  4. Merge user values over built-in defaults
//  5. Validate
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Auth.Secret() == "" {
		log.Warn("API secret is not set, contract listing will reject every request",
			"secret_env", cfg.Auth.SecretEnv)
	}

	log.Info("Configuration initialized successfully",
		"upstream", cfg.Upstream.GenerateURL(),
		"http_port", cfg.Server.HTTPPort,
		"max_line_bytes", cfg.Relay.MaxLineBytes,
		"line_limit_enabled", cfg.Relay.MaxLineBytes >= 0)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	userCfg, err := loader.loadContractgenYAML()
	if err != nil {
		return nil, NewLoadError(ConfigFileName, err)
	}

	cfg := &Config{
		configDir: configDir,
		Server:    DefaultServerConfig(),
		Upstream:  DefaultUpstreamConfig(),
		Relay:     DefaultRelayConfig(),
		Auth:      DefaultAuthConfig(),
	}

	// Non-zero user values override defaults; unset fields keep the built-in value.
	if userCfg.Server != nil {
		if err := mergo.Merge(cfg.Server, userCfg.Server, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge server config: %w", err)
		}
	}
	if userCfg.Upstream != nil {
		if err := mergo.Merge(cfg.Upstream, userCfg.Upstream, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge upstream config: %w", err)
		}
	}
	if userCfg.Relay != nil {
		if err := mergo.Merge(cfg.Relay, userCfg.Relay, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge relay config: %w", err)
		}
	}
	if userCfg.Auth != nil {
		if err := mergo.Merge(cfg.Auth, userCfg.Auth, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge auth config: %w", err)
		}
	}

	return cfg, nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadContractgenYAML() (*ContractgenYAMLConfig, error) {
	var config ContractgenYAMLConfig

	err := l.loadYAML(ConfigFileName, &config)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			slog.Info("No configuration file found, using built-in defaults",
				"path", filepath.Join(l.configDir, ConfigFileName))
			return &config, nil
		}
		return nil, err
	}

	return &config, nil
}
