package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// Config holds the application configuration
type Config struct {
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
	Auth    Auth    `mapstructure:"auth"`
	Vault   Vault   `mapstructure:"vault"`
	Storage Storage `mapstructure:"storage"`
	Token   Token   `mapstructure:"token"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Log configuration
type Log struct {
	Level string `mapstructure:"level"`
}

// Auth configuration
type Auth struct {
	TimestampTolerance time.Duration `mapstructure:"timestampTolerance"`
	Principals         []Principal   `mapstructure:"principals"`
}

// Principal binds an identity to its signing secret
type Principal struct {
	Identity string `mapstructure:"identity"`
	Secret   string `mapstructure:"secret"`
}

// Vault configuration
type Vault struct {
	Account                     string `mapstructure:"account"`
	CompensateOnTransferFailure bool   `mapstructure:"compensateOnTransferFailure"`
}

// Storage configuration
type Storage struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// Token configuration for the in-process asset ledger
type Token struct {
	Asset    string    `mapstructure:"asset"`
	Accounts []Account `mapstructure:"accounts"`
}

// Account is a genesis balance on the token ledger
type Account struct {
	Identity string `mapstructure:"identity"`
	Balance  string `mapstructure:"balance"`
}

// Secrets returns the principal secrets keyed by identity
func (a Auth) Secrets() map[string]string {
	secrets := make(map[string]string, len(a.Principals))
	for _, p := range a.Principals {
		secrets[p.Identity] = p.Secret
	}
	return secrets
}

// LoadConfig loads configuration from YAML files in configDir.
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	return load(viper.New(), configDir)
}

func load(v *viper.Viper, configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.timestampTolerance", "5m")
	v.SetDefault("vault.account", "vault")
	v.SetDefault("vault.compensateOnTransferFailure", true)
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.path", "microvault.db")
	v.SetDefault("token.asset", "USDC")

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Merge environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			err = v.MergeInConfig()
		} else {
			err = v.ReadInConfig()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load env config file: %w", err)
		}
	}

	v.SetEnvPrefix("MICROVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "MICROVAULT_SERVER_PORT", "PORT")
	_ = v.BindEnv("log.level", "MICROVAULT_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("storage.path", "MICROVAULT_STORAGE_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendBolt:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Auth.TimestampTolerance <= 0 {
		return fmt.Errorf("auth.timestampTolerance must be positive, got %v", c.Auth.TimestampTolerance)
	}

	seen := make(map[string]struct{}, len(c.Auth.Principals))
	for _, p := range c.Auth.Principals {
		if p.Identity == "" || p.Secret == "" {
			return fmt.Errorf("auth principal needs both identity and secret")
		}
		if _, dup := seen[p.Identity]; dup {
			return fmt.Errorf("duplicate auth principal %q", p.Identity)
		}
		seen[p.Identity] = struct{}{}
	}

	return nil
}
