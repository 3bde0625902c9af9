// Package config loads the meetingagent configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so that YAML values like "10m" or "30s"
// can be decoded directly.
type Duration time.Duration

// UnmarshalYAML decodes a duration from a YAML string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config is the top-level application configuration.
type Config struct {
	Booking BookingConfig `yaml:"booking"`
	API     APIConfig     `yaml:"api"`
	Chat    ChatConfig    `yaml:"chat"`
	Logging LoggingConfig `yaml:"logging"`
}

// BookingConfig holds defaults applied to new bookings when the user does
// not specify them.
type BookingConfig struct {
	// EventTypeID is the Cal.com event type used for new bookings.
	EventTypeID int64 `yaml:"event_type_id"`

	// DurationMinutes is the default meeting length.
	DurationMinutes int `yaml:"duration_minutes"`

	// Language is the booking language code, e.g. "en".
	Language string `yaml:"language"`

	// Location is the default meeting location value, e.g. "online".
	Location string `yaml:"location"`

	// LocationOption carries extra location detail, e.g. an address.
	LocationOption string `yaml:"location_option"`

	// TimeZone is the default IANA timezone for interpreting dates and
	// times when the user does not name one.
	TimeZone string `yaml:"timezone"`
}

// APIConfig holds Cal.com API connection settings.
type APIConfig struct {
	V1BaseURL string   `yaml:"v1_base_url"`
	V2BaseURL string   `yaml:"v2_base_url"`
	Timeout   Duration `yaml:"timeout"`
}

// ChatConfig holds chat assistant settings.
type ChatConfig struct {
	// SessionTimeout is how long an idle chat session is kept before its
	// collected answers are discarded.
	SessionTimeout Duration `yaml:"session_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Booking: BookingConfig{
			EventTypeID:     0,
			DurationMinutes: 30,
			Language:        "en",
			TimeZone:        "UTC",
		},
		API: APIConfig{
			Timeout: Duration(30 * time.Second),
		},
		Chat: ChatConfig{
			SessionTimeout: Duration(30 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from the given YAML file, applies defaults
// for unset fields and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Booking.DurationMinutes <= 0 {
		return fmt.Errorf("booking duration must be positive, got %d", c.Booking.DurationMinutes)
	}
	if c.Booking.TimeZone == "" {
		return fmt.Errorf("booking timezone must not be empty")
	}
	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.TimeZone, err)
	}
	if c.Chat.SessionTimeout <= 0 {
		return fmt.Errorf("chat session timeout must be positive, got %s", c.Chat.SessionTimeout)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}

	return nil
}
