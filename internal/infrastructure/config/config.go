package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hunter RF Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Receiver Receiver       `yaml:"receiver"`
	Radio    RadioConfig    `yaml:"radio"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Receiver contains receiver-instance identification.
type Receiver struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RadioConfig contains the PWM timing profile handed to the external
// demodulator. These select which physical pulses group into the bits
// the decoder consumes; they belong to the decoder's device profile
// and are never re-derived at runtime.
type RadioConfig struct {
	// ShortPulseUS is the mark width of a logical 1, in microseconds.
	ShortPulseUS int `yaml:"short_pulse_us"`

	// LongPulseUS is the mark width of a logical 0, in microseconds.
	LongPulseUS int `yaml:"long_pulse_us"`

	// ResetGapUS is the inter-frame reset gap, in microseconds.
	ResetGapUS int `yaml:"reset_gap_us"`

	// ToleranceUS is the accepted timing deviation, in microseconds.
	ToleranceUS int `yaml:"tolerance_us"`
}

// DecoderConfig selects the protocol revision profile.
type DecoderConfig struct {
	// Revision is the protocol revision: "A" (12-bit commands) or
	// "B" (10-bit padded commands with semantic output).
	Revision string `yaml:"revision"`

	// Inverted marks deployments whose capture path flips slicer
	// polarity, making the preamble appear all-zero. This is a fixed
	// property of the capture chain, never auto-detected per frame.
	Inverted bool `yaml:"inverted"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays is how long decoded events are kept before the
	// retention sweep removes them. Zero keeps events forever.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HUNTERRF_SECTION_KEY
// For example: HUNTERRF_DATABASE_PATH, HUNTERRF_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. The radio
// timings default to the Hunter remote's measured profile.
func defaultConfig() *Config {
	return &Config{
		Receiver: Receiver{
			ID:   "hunterrf-001",
			Name: "Hunter RF Core",
		},
		Radio: RadioConfig{
			ShortPulseUS: 412,
			LongPulseUS:  812,
			ResetGapUS:   12004,
			ToleranceUS:  160,
		},
		Decoder: DecoderConfig{
			Revision: "B",
		},
		Database: DatabaseConfig{
			Path:          "./data/hunterrf.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 90,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hunterrf-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HUNTERRF_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("HUNTERRF_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Decoder
	if v := os.Getenv("HUNTERRF_DECODER_REVISION"); v != "" {
		cfg.Decoder.Revision = v
	}

	// MQTT
	if v := os.Getenv("HUNTERRF_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HUNTERRF_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HUNTERRF_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HUNTERRF_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Receiver validation
	if c.Receiver.ID == "" {
		errs = append(errs, "receiver.id is required")
	}

	// Radio validation: the slicer needs two distinct, non-overlapping
	// pulse widths and a reset gap beyond both.
	if c.Radio.ShortPulseUS <= 0 || c.Radio.LongPulseUS <= 0 {
		errs = append(errs, "radio pulse widths must be positive")
	} else {
		if c.Radio.ShortPulseUS >= c.Radio.LongPulseUS {
			errs = append(errs, "radio.short_pulse_us must be less than radio.long_pulse_us")
		}
		if c.Radio.ToleranceUS <= 0 {
			errs = append(errs, "radio.tolerance_us must be positive")
		} else if 2*c.Radio.ToleranceUS >= c.Radio.LongPulseUS-c.Radio.ShortPulseUS {
			errs = append(errs, "radio.tolerance_us overlaps the short and long pulse windows")
		}
		if c.Radio.ResetGapUS <= c.Radio.LongPulseUS {
			errs = append(errs, "radio.reset_gap_us must exceed radio.long_pulse_us")
		}
	}

	// Decoder validation
	if c.Decoder.Revision != "A" && c.Decoder.Revision != "B" {
		errs = append(errs, `decoder.revision must be "A" or "B"`)
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
