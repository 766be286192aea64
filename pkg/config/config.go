package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/4114241996/sapog/pkg/hal"
	"github.com/4114241996/sapog/pkg/opto"
	"github.com/4114241996/sapog/pkg/tacho"
)

// Config represents the application configuration. The detection and
// timeout constants were tuned for one specific tick rate and optical
// setup, so they are configuration, not code.
type Config struct {
	Serial SerialConfig  `yaml:"serial"`
	ADC    ADCConfig     `yaml:"adc"`
	Opto   OptoConfig    `yaml:"opto"`
	Tacho  TachoConfig   `yaml:"tacho"`
	Sim    hal.SimConfig `yaml:"sim"`
}

// SerialConfig contains the reporting-link configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ADCConfig maps the three measurements to converter channels.
type ADCConfig struct {
	OptoChannel    uint8 `yaml:"opto_channel"`
	VoltageChannel uint8 `yaml:"voltage_channel"`
	CurrentChannel uint8 `yaml:"current_channel"`
}

// OptoConfig contains the edge-detection parameters.
type OptoConfig struct {
	Threshold int `yaml:"threshold"` // AC level that opens a peak
	DCWindow  int `yaml:"dc_window"` // samples in the DC moving average
}

// TachoConfig contains period measurement and RPM conversion parameters.
type TachoConfig struct {
	TimeoutTicks uint16  `yaml:"timeout_ticks"` // silent ticks before a stall is reported
	TickRateHz   float64 `yaml:"tick_rate_hz"`  // tick counter frequency
	BladeCount   int     `yaml:"blade_count"`   // propeller blades per revolution
	SmoothWindow int     `yaml:"smooth_window"` // RPM moving-average window
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "", // empty = keep frames on the simulated UART
			BaudRate: hal.DefaultBaudRate,
		},
		ADC: ADCConfig{
			OptoChannel:    0,
			VoltageChannel: 7,
			CurrentChannel: 6,
		},
		Opto: OptoConfig{
			Threshold: opto.DefaultThreshold,
			DCWindow:  opto.DefaultDCWindow,
		},
		Tacho: TachoConfig{
			TimeoutTicks: tacho.DefaultTimeoutTicks,
			TickRateHz:   250000, // 16 MHz core clock / 64 prescaler
			BladeCount:   2,
			SmoothWindow: 10,
		},
		Sim: hal.DefaultSimConfig(),
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if
// missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Opto.Threshold == 0 {
		c.Opto.Threshold = def.Opto.Threshold
	}
	if c.Opto.DCWindow == 0 {
		c.Opto.DCWindow = def.Opto.DCWindow
	}

	if c.Tacho.TimeoutTicks == 0 {
		c.Tacho.TimeoutTicks = def.Tacho.TimeoutTicks
	}
	if c.Tacho.TickRateHz == 0 {
		c.Tacho.TickRateHz = def.Tacho.TickRateHz
	}
	if c.Tacho.BladeCount == 0 {
		c.Tacho.BladeCount = def.Tacho.BladeCount
	}
	if c.Tacho.SmoothWindow == 0 {
		c.Tacho.SmoothWindow = def.Tacho.SmoothWindow
	}

	if c.Sim.ConversionTicks == 0 {
		c.Sim.ConversionTicks = def.Sim.ConversionTicks
	}
	if c.Sim.PollTicks == 0 {
		c.Sim.PollTicks = def.Sim.PollTicks
	}
	if c.Sim.PulsePeriod == 0 {
		c.Sim.PulsePeriod = def.Sim.PulsePeriod
	}
	if c.Sim.PulseWidth == 0 {
		c.Sim.PulseWidth = def.Sim.PulseWidth
	}
	if c.Sim.DCLevel == 0 {
		c.Sim.DCLevel = def.Sim.DCLevel
	}
	if c.Sim.PulseAmplitude == 0 {
		c.Sim.PulseAmplitude = def.Sim.PulseAmplitude
	}

	// The adc section is the one authority on the channel map; the sim
	// must answer on the same channels the loop samples.
	c.Sim.OptoChannel = c.ADC.OptoChannel
	c.Sim.VoltageChannel = c.ADC.VoltageChannel
	c.Sim.CurrentChannel = c.ADC.CurrentChannel
}
