// Package config loads hub settings from configs/config.yml, environment
// variables and bound command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (TOWER_LOG_LEVEL, ...).
// The listening port is also read from the bare PORT variable.
const EnvPrefix = "tower"

// Config is the full set of settings for every command.
type Config struct {
	Host      string          `mapstructure:"host"`
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Relay     RelayConfig     `mapstructure:"relay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Capacity   int    `mapstructure:"capacity"`
	TimeLayout string `mapstructure:"time_layout"`
	TimeZone   string `mapstructure:"time_zone"` // IANA name; empty means local
}

type SimulatorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	URL      string        `mapstructure:"url"` // hub targeted by the simulate command
}

type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	QoS      byte   `mapstructure:"qos"`
}

type DashboardConfig struct {
	URL       string        `mapstructure:"url"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ExportDir string        `mapstructure:"export_dir"`
	LogFile   string        `mapstructure:"log_file"`
}

type RelayConfig struct {
	Port string `mapstructure:"port"` // serial device, e.g. /dev/ttyACM0
	Baud int    `mapstructure:"baud"` // 0 leaves the line settings untouched
	URL  string `mapstructure:"url"`
}

// defaults mirrors the shipped configs/config.yml.
var defaults = map[string]any{
	"host":                 "0.0.0.0",
	"port":                 "3000",
	"log.level":            "info",
	"log.format":           "console",
	"store.capacity":       200,
	"store.time_layout":    "02/01/2006 15:04:05",
	"store.time_zone":      "",
	"simulator.enabled":    false,
	"simulator.interval":   "3s",
	"simulator.url":        "http://localhost:3000",
	"mqtt.enabled":         false,
	"mqtt.broker":          "tcp://localhost:1883",
	"mqtt.topic":           "tower/readings",
	"mqtt.client_id":       "tower-hub",
	"mqtt.qos":             0,
	"dashboard.url":        "http://localhost:3000",
	"dashboard.interval":   "5s",
	"dashboard.timeout":    "4s",
	"dashboard.export_dir": ".",
	"dashboard.log_file":   "dashboard.log",
	"relay.port":           "/dev/ttyACM0",
	"relay.baud":           9600,
	"relay.url":            "http://localhost:3000",
}

// Setup prepares v: defaults, config file lookup and environment binding.
func Setup(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AddConfigPath("configs") // configs/config.yml
	v.AddConfigPath(".")
	v.SetConfigName("config")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	_ = v.BindEnv("port", "PORT", "TOWER_PORT")
}

// Load reads the config file when present and decodes v into a Config.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode converts the settings already held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.Store.Capacity < 1 {
		return fmt.Errorf("store.capacity must be positive, got %d", c.Store.Capacity)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// Location resolves store.time_zone; empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Store.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Store.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid store.time_zone %q: %w", c.Store.TimeZone, err)
	}
	return loc, nil
}

// Addr is the listen address, host:port.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}
