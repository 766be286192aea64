package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, uint8(0), cfg.ADC.OptoChannel)
	assert.Equal(t, uint8(7), cfg.ADC.VoltageChannel)
	assert.Equal(t, uint8(6), cfg.ADC.CurrentChannel)
	assert.Equal(t, 30, cfg.Opto.Threshold)
	assert.Equal(t, 1024, cfg.Opto.DCWindow)
	assert.Equal(t, uint16(50000), cfg.Tacho.TimeoutTicks)
	assert.Equal(t, float64(250000), cfg.Tacho.TickRateHz)
	assert.Equal(t, 2, cfg.Tacho.BladeCount)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 30, cfg.Opto.Threshold)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 57600

opto:
  threshold: 40

tacho:
  timeout_ticks: 25000
  blade_count: 3
`
	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 40, cfg.Opto.Threshold)
	assert.Equal(t, uint16(25000), cfg.Tacho.TimeoutTicks)
	assert.Equal(t, 3, cfg.Tacho.BladeCount)

	// Unspecified fields keep their defaults.
	assert.Equal(t, 1024, cfg.Opto.DCWindow)
	assert.Equal(t, float64(250000), cfg.Tacho.TickRateHz)
}

func TestLoad_SimChannelsFollowADCSection(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	// The sim section tries to claim its own channel map; the adc
	// section must win, or the sim would answer on the wrong channels.
	yamlContent := `
adc:
  opto_channel: 1
  voltage_channel: 2
  current_channel: 3

sim:
  opto_channel: 4
  voltage_channel: 5
  current_channel: 6
`
	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, uint8(1), cfg.Sim.OptoChannel)
	assert.Equal(t, uint8(2), cfg.Sim.VoltageChannel)
	assert.Equal(t, uint8(3), cfg.Sim.CurrentChannel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial: [not: valid")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	_, err = Load(tmpfile.Name())
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB3"
	cfg.Opto.Threshold = 25
	cfg.Tacho.TimeoutTicks = 30000
	cfg.Sim.PulsePeriod = 5000
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
