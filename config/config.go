// Package config provides Viper-based configuration for carectl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout applies to feature requests.
	Timeout time.Duration `mapstructure:"timeout"`
	// AuthTimeout applies to the auth endpoints, which get a shorter
	// budget so session checks fail fast.
	AuthTimeout time.Duration `mapstructure:"auth_timeout"`
	// RegistryURL is the public provider registry used by hospital
	// search; empty means the default NPI endpoint.
	RegistryURL string `mapstructure:"registry_url"`
}

// AuthConfig tunes the session lifecycle.
type AuthConfig struct {
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	RefreshFloor     time.Duration `mapstructure:"refresh_floor"`
	DebounceWindow   time.Duration `mapstructure:"debounce_window"`
	InFlightWait     time.Duration `mapstructure:"in_flight_wait"`
	RefreshTimeout   time.Duration `mapstructure:"refresh_timeout"`
	RefreshThreshold time.Duration `mapstructure:"refresh_threshold"`
}

// SessionConfig locates the persisted session file.
type SessionConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	// Pick up a local .env first so CARECTL_* vars set there are visible
	// to viper. Missing file is fine.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".carectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/carectl")
	}

	v.SetEnvPrefix("CARECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file is fine, defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Session.File == "" {
		cfg.Session.File = defaultSessionFile()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Auth.RefreshInterval <= 0 {
		return fmt.Errorf("auth.refresh_interval must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.auth_timeout", 15*time.Second)
	v.SetDefault("api.registry_url", "")

	// The backend's tokens live ~15 minutes; the refresh cadence and
	// threshold are tuned against that.
	v.SetDefault("auth.refresh_interval", 14*time.Minute)
	v.SetDefault("auth.refresh_floor", 60*time.Second)
	v.SetDefault("auth.debounce_window", 10*time.Second)
	v.SetDefault("auth.in_flight_wait", 5*time.Second)
	v.SetDefault("auth.refresh_timeout", 5*time.Second)
	v.SetDefault("auth.refresh_threshold", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("output.colors", true)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".carectl-session.json")
	}
	return filepath.Join(home, ".config", "carectl", "session.json")
}
