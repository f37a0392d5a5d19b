package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	Setup(v)
	return v
}

func TestDecode_Defaults(t *testing.T) {
	cfg, err := Decode(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Store.Capacity)
	assert.Equal(t, "02/01/2006 15:04:05", cfg.Store.TimeLayout)
	assert.Equal(t, 3*time.Second, cfg.Simulator.Interval)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.Interval)
	assert.Equal(t, "tower/readings", cfg.MQTT.Topic)
	assert.Equal(t, 9600, cfg.Relay.Baud)
	assert.False(t, cfg.MQTT.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestSetup_PortFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	cfg, err := Decode(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
}

func TestSetup_PrefixedEnvironment(t *testing.T) {
	t.Setenv("TOWER_STORE_CAPACITY", "25")
	t.Setenv("TOWER_LOG_LEVEL", "debug")
	t.Setenv("TOWER_DASHBOARD_INTERVAL", "750ms")

	cfg, err := Decode(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Store.Capacity)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Dashboard.Interval)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	yml := "port: \"4000\"\nstore:\n  capacity: 50\n  time_zone: UTC\nmqtt:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	v := newViper(t)
	v.AddConfigPath(dir)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, 50, cfg.Store.Capacity)
	assert.True(t, cfg.MQTT.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AddConfigPath(t.TempDir())
	v.SetConfigName("does-not-exist")

	_, err := Load(v)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Decode(newViper(t))
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"non numeric port", func(c *Config) { c.Port = "http" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"zero capacity", func(c *Config) { c.Store.Capacity = 0 }},
		{"unknown zone", func(c *Config) { c.Store.TimeZone = "Mars/Olympus" }},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
