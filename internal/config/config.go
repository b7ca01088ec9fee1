package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-artery/internal/beat"
	"github.com/coreman2200/funtimes-artery/internal/e131"
	"github.com/coreman2200/funtimes-artery/internal/led"
)

type Network struct {
	Group     string `yaml:"group"`               // e.g. 239.255.0.1
	Port      int    `yaml:"port"`                // e.g. 5568
	Interface string `yaml:"interface,omitempty"` // e.g. wlan0
}

type SPI struct {
	Dev string `yaml:"dev"` // e.g. SPI0.0; empty picks the first port
}

type Preview struct {
	Addr string `yaml:"addr"` // e.g. :8080; empty disables
}

type Config struct {
	Driver     string `yaml:"driver"` // "spi" | "sim" | "preview"
	ColorOrder string `yaml:"color_order"`
	LEDCount   int    `yaml:"led_count"`
	Address    int    `yaml:"address"` // first DMX channel of the fixture
	TickMS     int    `yaml:"tick_ms"`
	LogLevel   string `yaml:"log_level"`

	Network  Network     `yaml:"network"`
	SPI      SPI         `yaml:"spi,omitempty"`
	Preview  Preview     `yaml:"preview,omitempty"`
	Defaults beat.Values `yaml:"defaults"`
}

// Default matches the reference strip: 110 RGB pixels at address 1, 20 Hz.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		ColorOrder: "RGB",
		LEDCount:   110,
		Address:    1,
		TickMS:     50,
		LogLevel:   "info",
		Network: Network{
			Group: e131.DefaultGroup,
			Port:  e131.DefaultPort,
		},
		Defaults: beat.DefaultValues,
	}
}

// Load reads path on top of Default, so a partial file only overrides the
// fields it sets.
func Load(path string) (*Config, error) {
	c := Default()
	if err := Overlay(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Overlay reads path on top of c. Fields missing from the file keep their
// current values.
func Overlay(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Driver {
	case "spi", "sim", "preview":
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if _, err := led.ParseOrder(c.ColorOrder); err != nil {
		errs = append(errs, err)
	}
	if c.LEDCount <= 0 {
		errs = append(errs, fmt.Errorf("led_count must be positive, got %d", c.LEDCount))
	}
	if _, err := beat.NewDecoder(c.Address, beat.DefaultChannelMap); err != nil {
		errs = append(errs, err)
	}
	if c.TickMS <= 0 {
		errs = append(errs, fmt.Errorf("tick_ms must be positive, got %d", c.TickMS))
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		errs = append(errs, fmt.Errorf("network.port %d out of range", c.Network.Port))
	}
	if c.Driver == "preview" && c.Preview.Addr == "" {
		errs = append(errs, errors.New("driver preview needs preview.addr"))
	}
	return errors.Join(errs...)
}
