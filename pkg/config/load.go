package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for gateway environment variables.
const EnvPrefix = "GATEWAY"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshaled over the defaults, so absent fields keep their
// default values. A missing file is not an error; the defaults stand.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides.
//
// The loading sequence is:
//  1. Defaults
//  2. YAML file (if present)
//  3. GATEWAY_* environment variables
//  4. Legacy API_HOST / API_PORT variables
//  5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyLegacyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GATEWAY_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv(EnvPrefix + "_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv(EnvPrefix + "_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv(EnvPrefix + "_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv(EnvPrefix + "_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Backend overrides
	if val := os.Getenv(EnvPrefix + "_BACKEND_HOST"); val != "" {
		cfg.Backend.Host = val
	}
	if val := os.Getenv(EnvPrefix + "_BACKEND_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Backend.Port = port
		}
	}
	if val := os.Getenv(EnvPrefix + "_BACKEND_SCHEME"); val != "" {
		cfg.Backend.Scheme = val
	}
	if val := os.Getenv(EnvPrefix + "_BACKEND_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backend.Timeout = d
		}
	}

	// Audit overrides
	if val := os.Getenv(EnvPrefix + "_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "_AUDIT_DRIVER"); val != "" {
		cfg.Audit.Driver = val
	}
	if val := os.Getenv(EnvPrefix + "_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv(EnvPrefix + "_AUDIT_RETENTION_DAYS"); val != "" {
		if days, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = days
		}
	}

	// Telemetry overrides
	if val := os.Getenv(EnvPrefix + "_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(EnvPrefix + "_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv(EnvPrefix + "_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

// applyLegacyEnvOverrides honors the API_HOST and API_PORT variables the
// dashboard deployments already use. They take precedence over both the
// file and the GATEWAY_* variables.
func applyLegacyEnvOverrides(cfg *Config) {
	if val := os.Getenv("API_HOST"); val != "" {
		cfg.Backend.Host = val
	}
	if val := os.Getenv("API_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Backend.Port = port
		}
	}
}
