// Package config loads exchange configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cryptoadapters/coinsbit/log"
)

var (
	// ErrExchangeNotFound is returned when an exchange config cannot be found
	ErrExchangeNotFound = errors.New("exchange config not found")
)

// APICredentialsConfig stores the API credentials
type APICredentialsConfig struct {
	Key    string `mapstructure:"key"`
	Secret string `mapstructure:"secret"`
}

// APIConfig stores the exchange API settings
type APIConfig struct {
	AuthenticatedSupport bool                 `mapstructure:"authenticatedSupport"`
	Credentials          APICredentialsConfig `mapstructure:"credentials"`
	Endpoint             string               `mapstructure:"endpoint"`
}

// Exchange holds all the per-exchange information
type Exchange struct {
	Name        string        `mapstructure:"name"`
	Enabled     bool          `mapstructure:"enabled"`
	Verbose     bool          `mapstructure:"verbose"`
	HTTPTimeout time.Duration `mapstructure:"httpTimeout"`
	API         APIConfig     `mapstructure:"api"`
}

// Config holds the loaded configuration
type Config struct {
	Exchanges []Exchange `mapstructure:"exchanges"`
}

// Validate checks the exchange config for the minimum required fields
func (e *Exchange) Validate() error {
	if e == nil {
		return errors.New("exchange config is nil")
	}
	if e.Name == "" {
		return errors.New("exchange config name unset")
	}
	return nil
}

// LoadConfig reads a configuration file via viper, after optionally seeding
// process environment from a .env file so credentials can be kept out of the
// config on disk. Environment variables of the form <NAME>_API_KEY and
// <NAME>_API_SECRET override file credentials.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Missing .env is not fatal; credentials may live in the config file
		log.Debugf(log.ConfigSys, "no .env file loaded: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config %s: %w", configPath, err)
	}

	for i := range cfg.Exchanges {
		prefix := strings.ToUpper(cfg.Exchanges[i].Name)
		if key := v.GetString(prefix + "_API_KEY"); key != "" {
			cfg.Exchanges[i].API.Credentials.Key = key
		}
		if secret := v.GetString(prefix + "_API_SECRET"); secret != "" {
			cfg.Exchanges[i].API.Credentials.Secret = secret
		}
	}
	return &cfg, nil
}

// GetExchangeConfig returns the config of the requested exchange
func (c *Config) GetExchangeConfig(name string) (*Exchange, error) {
	for i := range c.Exchanges {
		if strings.EqualFold(c.Exchanges[i].Name, name) {
			return &c.Exchanges[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrExchangeNotFound, name)
}
