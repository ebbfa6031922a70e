package stopwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/devices/v3/tm1637"
)

// Config describes a stopwatch installation.
//
// Example file:
//
//	clk: GPIO23
//	dio: GPIO24
//	start_stop: GPIO17
//	reset: GPIO27
//	brightness: 4
//	layout: minutes
//	interval: 10ms
//	debounce: 50ms
type Config struct {
	// Display pins.
	CLK string `yaml:"clk"`
	DIO string `yaml:"dio"`
	// Button pins, optional.
	StartStop string `yaml:"start_stop"`
	Reset     string `yaml:"reset"`

	Brightness int           `yaml:"brightness"`
	Delay      time.Duration `yaml:"delay"`
	IgnoreAck  bool          `yaml:"ignore_ack"`

	Layout   string        `yaml:"layout"`
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the configuration used for fields a file leaves out.
func DefaultConfig() Config {
	return Config{
		CLK:        "GPIO23",
		DIO:        "GPIO24",
		StartStop:  "GPIO17",
		Reset:      "GPIO27",
		Brightness: tm1637.MaxBrightness,
		Delay:      tm1637.DefaultDelay,
		Layout:     LayoutCentiseconds.String(),
		Interval:   10 * time.Millisecond,
		Debounce:   50 * time.Millisecond,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("stopwatch: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("stopwatch: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.CLK == "" || c.DIO == "" {
		errs = append(errs, errors.New("clk and dio pins are required"))
	}
	if c.Brightness < 0 || c.Brightness > tm1637.MaxBrightness {
		errs = append(errs, fmt.Errorf("brightness %d out of range [0, %d]", c.Brightness, tm1637.MaxBrightness))
	}
	if c.Delay < 0 {
		errs = append(errs, errors.New("delay must not be negative"))
	}
	if c.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if _, err := ParseLayout(c.Layout); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DisplayOpts returns the driver options for this configuration.
func (c Config) DisplayOpts(logger *slog.Logger) *tm1637.Opts {
	return &tm1637.Opts{
		Brightness: c.Brightness,
		Delay:      c.Delay,
		IgnoreAck:  c.IgnoreAck,
		Logger:     logger,
	}
}

// ParsedLayout returns the layout; the configuration must be valid.
func (c Config) ParsedLayout() Layout {
	l, _ := ParseLayout(c.Layout)
	return l
}
