// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is loaded once at
// startup and treated as immutable for the duration of a run.
type Config struct {
	LoginURL            string        `mapstructure:"login_url" yaml:"login_url"`
	Location            string        `mapstructure:"location" yaml:"location"`
	ResourceCategory    string        `mapstructure:"resource_category" yaml:"resource_category"`
	PreferredResourceID string        `mapstructure:"preferred_resource_id" yaml:"preferred_resource_id"`
	Times               TimesConfig   `mapstructure:"times" yaml:"times"`
	OutputFolder        string        `mapstructure:"output_folder" yaml:"output_folder"`
	Logger              LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser             BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Booking             BookingConfig `mapstructure:"booking" yaml:"booking"`
}

// TimesConfig bounds the allowed booking window. Start and End are
// zero-padded 24-hour clock strings, e.g. "0800".
type TimesConfig struct {
	Start string `mapstructure:"start" yaml:"start"`
	End   string `mapstructure:"end" yaml:"end"`
}

// LoggerConfig configures the zap logger and its rotating file sink.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// BookingConfig tunes the per-credential fan-out and slot parsing.
type BookingConfig struct {
	// Parallel runs one agent goroutine per credential set instead of
	// booking sequentially. Each agent still owns its own browser tab.
	Parallel bool `mapstructure:"parallel" yaml:"parallel"`
	// SlotMinutes is the granularity of the portal's timeline grid. The
	// listing only exposes slot start times, so slot ends are derived
	// from this.
	SlotMinutes int `mapstructure:"slot_minutes" yaml:"slot_minutes"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "roombot")
	v.SetDefault("logger.log_file", "roombot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.action_timeout", "10s")
	v.SetDefault("browser.navigation_timeout", "30s")

	// -- Booking --
	v.SetDefault("booking.parallel", false)
	v.SetDefault("booking.slot_minutes", 15)

	v.SetDefault("output_folder", "bookings")
}

// NewDefaultConfig creates a configuration struct populated with defaults.
// Required fields (login_url, location, resource_category, times) stay
// empty and must come from the config file.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// It fails fast: a run never starts with a partially usable config.
func (c *Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("login_url is a required configuration field")
	}
	if _, err := url.ParseRequestURI(c.LoginURL); err != nil {
		return fmt.Errorf("login_url is not a valid URL: %w", err)
	}
	if c.Location == "" {
		return fmt.Errorf("location is a required configuration field")
	}
	if c.ResourceCategory == "" {
		return fmt.Errorf("resource_category is a required configuration field")
	}
	if c.OutputFolder == "" {
		return fmt.Errorf("output_folder is a required configuration field")
	}

	start, err := ParseClock(c.Times.Start)
	if err != nil {
		return fmt.Errorf("times.start: %w", err)
	}
	end, err := ParseClock(c.Times.End)
	if err != nil {
		return fmt.Errorf("times.end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("times.end %q must be after times.start %q", c.Times.End, c.Times.Start)
	}

	if c.Booking.SlotMinutes <= 0 {
		return fmt.Errorf("booking.slot_minutes must be a positive integer")
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("browser.action_timeout must be a positive duration")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	return nil
}

// Window returns the validated booking window. Validate must have
// succeeded before calling this.
func (c *Config) Window() (start, end Clock) {
	start, _ = ParseClock(c.Times.Start)
	end, _ = ParseClock(c.Times.End)
	return start, end
}
