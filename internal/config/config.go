// Package config loads service configuration from an optional YAML file,
// TAXCALC_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/liamcoop/taxregimes/tax"
)

// EnvPrefix is prepended to every environment override, e.g. TAXCALC_SERVER_PORT.
const EnvPrefix = "TAXCALC"

// Config is the full service configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Regimes RegimesConfig `mapstructure:"regimes"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SlowRequest    time.Duration `mapstructure:"slow_request"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RegimesConfig optionally replaces the built-in regime tables
type RegimesConfig struct {
	CacheTTL time.Duration  `mapstructure:"cache_ttl"`
	Tables   []RegimeConfig `mapstructure:"tables"`
}

// RegimeConfig is the file representation of a tax.Regime
type RegimeConfig struct {
	ID                string        `mapstructure:"id"`
	Name              string        `mapstructure:"name"`
	StandardDeduction float64       `mapstructure:"standard_deduction"`
	Threshold         float64       `mapstructure:"threshold"`
	Deductions        string        `mapstructure:"deductions"`
	Slabs             []tax.Slab    `mapstructure:"slabs"`
	MarginalRelief    *ReliefConfig `mapstructure:"marginal_relief"`
}

// ReliefConfig is the file representation of tax.MarginalRelief
type ReliefConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// New returns a viper instance with defaults and environment binding.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.slow_request", time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("regimes.cache_ttl", time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PORT is honoured as a fallback for common hosting platforms.
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")

	return v
}

// Load reads the config file at path (if any) into v and decodes it.
// An empty path searches ./taxcalc.yaml and $HOME/.config/taxcalc/taxcalc.yaml;
// a missing file is not an error unless path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taxcalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "taxcalc"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if _, err := cfg.RegimeTables(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RegimeTables returns the configured regimes, or tax.DefaultRegimes when
// none are configured. The result is validated.
func (c *Config) RegimeTables() ([]*tax.Regime, error) {
	if len(c.Regimes.Tables) == 0 {
		return tax.DefaultRegimes(), nil
	}

	regimes := make([]*tax.Regime, 0, len(c.Regimes.Tables))
	for _, rc := range c.Regimes.Tables {
		r := &tax.Regime{
			ID:                rc.ID,
			Name:              rc.Name,
			StandardDeduction: rc.StandardDeduction,
			Threshold:         rc.Threshold,
			Deductions:        rc.Deductions,
			Slabs:             append([]tax.Slab(nil), rc.Slabs...),
		}
		if rc.MarginalRelief != nil {
			r.MarginalRelief = &tax.MarginalRelief{Threshold: rc.MarginalRelief.Threshold}
		}
		regimes = append(regimes, r)
	}

	if err := tax.ValidateRegimes(regimes); err != nil {
		return nil, fmt.Errorf("invalid regime tables: %w", err)
	}

	return regimes, nil
}

// Engine builds a tax.Engine over the configured regimes
func (c *Config) Engine() (*tax.Engine, error) {
	regimes, err := c.RegimeTables()
	if err != nil {
		return nil, err
	}

	store, err := tax.NewInMemoryRegimeStore(regimes...)
	if err != nil {
		return nil, fmt.Errorf("failed to create regime store: %w", err)
	}

	cache := tax.NewInMemoryRegimeCache(tax.CacheConfig{TTL: c.Regimes.CacheTTL})
	engine, err := tax.NewEngineWithCache(store, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax engine: %w", err)
	}

	return engine, nil
}
