// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		c, err := ParseClock("0800")
		require.NoError(t, err)
		assert.Equal(t, Clock(8*60), c)

		c, err = ParseClock("2359")
		require.NoError(t, err)
		assert.Equal(t, Clock(23*60+59), c)

		c, err = ParseClock("0000")
		require.NoError(t, err)
		assert.Equal(t, Clock(0), c)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, bad := range []string{"", "800", "08000", "8:00", "abcd", "2400", "0860"} {
			_, err := ParseClock(bad)
			assert.Error(t, err, "input %q should be rejected", bad)
		}
	})

	t.Run("round trips through String", func(t *testing.T) {
		c, err := ParseClock("0930")
		require.NoError(t, err)
		assert.Equal(t, "0930", c.String())
	})
}

func TestClockOf(t *testing.T) {
	ts := time.Date(2025, 9, 1, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, Clock(14*60+30), ClockOf(ts))
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "roombot", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, 15, cfg.Booking.SlotMinutes)
	assert.False(t, cfg.Booking.Parallel)
	assert.Equal(t, "bookings", cfg.OutputFolder)
}

// validConfig returns defaults plus the required fields a config file
// would normally supply.
func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.LoginURL = "https://library.example.edu/login"
	cfg.Location = "Business Library"
	cfg.ResourceCategory = "PC / Monitor"
	cfg.Times = TimesConfig{Start: "0800", End: "1800"}
	return cfg
}

func TestConfigValidation(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing required keys fail", func(t *testing.T) {
		cases := map[string]func(*Config){
			"login_url":         func(c *Config) { c.LoginURL = "" },
			"location":          func(c *Config) { c.Location = "" },
			"resource_category": func(c *Config) { c.ResourceCategory = "" },
			"output_folder":     func(c *Config) { c.OutputFolder = "" },
			"times.start":       func(c *Config) { c.Times.Start = "" },
			"times.end":         func(c *Config) { c.Times.End = "" },
		}
		for name, mutate := range cases {
			cfg := validConfig()
			mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err, "missing %s should fail validation", name)
		}
	})

	t.Run("window must be ordered", func(t *testing.T) {
		cfg := validConfig()
		cfg.Times = TimesConfig{Start: "1800", End: "0800"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be after")
	})

	t.Run("bad login url fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.LoginURL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("slot granularity must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Booking.SlotMinutes = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestNewConfigFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("login_url", "https://library.example.edu/login")
	v.Set("location", "Business Library")
	v.Set("resource_category", "PC / Monitor")
	v.Set("times.start", "0800")
	v.Set("times.end", "1800")
	// Unrecognized keys are ignored, per the external interface contract.
	v.Set("some_unknown_key", "whatever")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "Business Library", cfg.Location)

	start, end := cfg.Window()
	assert.Equal(t, Clock(8*60), start)
	assert.Equal(t, Clock(18*60), end)
}

func TestNewConfigFromViperRejectsIncomplete(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	// No login_url, location etc.
	_, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
