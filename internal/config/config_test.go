package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
led_count: 60
color_order: GRB
defaults:
  bpm: 90
  flow: -20
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, c.LEDCount)
	assert.Equal(t, "GRB", c.ColorOrder)
	assert.Equal(t, 1, c.Address)
	assert.Equal(t, 50, c.TickMS)
	assert.Equal(t, uint8(90), c.Defaults.BPM)
	assert.Equal(t, int8(-20), c.Defaults.Flow)
	assert.Equal(t, uint8(4), c.Defaults.Width, "unset defaults survive")
	assert.NoError(t, c.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Driver = "preview"
	c.Preview.Addr = ":9000"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	for name, mut := range map[string]func(*Config){
		"driver":      func(c *Config) { c.Driver = "pwm" },
		"order":       func(c *Config) { c.ColorOrder = "RRR" },
		"count":       func(c *Config) { c.LEDCount = 0 },
		"address low": func(c *Config) { c.Address = 0 },
		"address hi":  func(c *Config) { c.Address = 507 },
		"tick":        func(c *Config) { c.TickMS = 0 },
		"port":        func(c *Config) { c.Network.Port = 70000 },
		"preview":     func(c *Config) { c.Driver = "preview" },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestOverlayKeepsCallerValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_ms: 25\n"), 0644))

	c := Default()
	c.LEDCount = 300 // as if set by a flag
	require.NoError(t, Overlay(path, c))
	assert.Equal(t, 300, c.LEDCount)
	assert.Equal(t, 25, c.TickMS)
}
