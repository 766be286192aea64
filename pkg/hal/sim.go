package hal

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// SimConfig describes the simulated board: conversion timing, the synthetic
// optical waveform and the fixed auxiliary readings.
type SimConfig struct {
	OptoChannel    uint8 `yaml:"opto_channel"`
	VoltageChannel uint8 `yaml:"voltage_channel"`
	CurrentChannel uint8 `yaml:"current_channel"`

	// ConversionTicks is the latency between Start and Ready.
	ConversionTicks uint16 `yaml:"conversion_ticks"`
	// PollTicks is how many ticks elapse per Ready poll.
	PollTicks uint16 `yaml:"poll_ticks"`

	// Optical waveform: a DC level with a half-sine blade-shadow pulse
	// every PulsePeriod ticks, plus uniform noise.
	DCLevel        uint8   `yaml:"dc_level"`
	PulseAmplitude uint8   `yaml:"pulse_amplitude"`
	PulsePeriod    uint16  `yaml:"pulse_period"`
	PulseWidth     uint16  `yaml:"pulse_width"`
	NoiseLevel     float32 `yaml:"noise_level"`

	VoltageRaw uint16 `yaml:"voltage_raw"`
	CurrentRaw uint16 `yaml:"current_raw"`

	Seed int64 `yaml:"seed"`
}

// DefaultSimConfig returns a waveform that yields roughly 100 blade
// passages per second at the original 250 kHz tick rate.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		OptoChannel:     0,
		VoltageChannel:  7,
		CurrentChannel:  6,
		ConversionTicks: 28,
		PollTicks:       1,
		DCLevel:         80,
		PulseAmplitude:  100,
		PulsePeriod:     2500,
		PulseWidth:      400,
		NoiseLevel:      2,
		VoltageRaw:      300,
		CurrentRaw:      120,
		Seed:            1,
	}
}

// Sim is a deterministic in-memory board. It implements ADC and Clock
// directly; UART and Pin return the byte sink and digital outputs.
// Time advances as the board is polled, so a cooperative loop running
// against it makes progress without goroutines or wall-clock sleeps.
type Sim struct {
	cfg SimConfig

	now     uint64 // absolute ticks since power-on; Ticks() wraps to 16 bits
	channel uint8
	busy    bool
	doneAt  uint64
	result  uint16

	rng  *rand.Rand
	uart *SimUART
	pins map[string]*SimPin
}

// NewSim creates a simulated board from cfg.
func NewSim(cfg SimConfig) *Sim {
	if cfg.PollTicks == 0 {
		cfg.PollTicks = 1
	}
	if cfg.PulsePeriod == 0 {
		cfg.PulsePeriod = 2500
	}
	s := &Sim{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		pins: make(map[string]*SimPin),
	}
	s.uart = &SimUART{}
	return s
}

// SelectChannel routes ch to the converter.
func (s *Sim) SelectChannel(ch uint8) { s.channel = ch }

// Start begins a conversion on the selected channel.
func (s *Sim) Start() {
	s.busy = true
	s.doneAt = s.now + uint64(s.cfg.ConversionTicks)
}

// Ready reports conversion completion. Each poll costs PollTicks, which is
// what moves simulated time forward while the loop busy-waits.
func (s *Sim) Ready() bool {
	s.now += uint64(s.cfg.PollTicks)
	if s.busy && s.now >= s.doneAt {
		s.result = s.convert()
		s.busy = false
	}
	return !s.busy
}

// Read8 returns the last result truncated to 8 bits.
func (s *Sim) Read8() uint8 { return uint8(s.result) }

// Read16 returns the last result at full resolution.
func (s *Sim) Read16() uint16 { return s.result }

// Ticks returns the wrapped 16-bit tick counter.
func (s *Sim) Ticks() uint16 { return uint16(s.now) }

// Advance moves simulated time forward without polling.
func (s *Sim) Advance(ticks uint64) { s.now += ticks }

// UART returns the board's transmit-side serial port.
func (s *Sim) UART() *SimUART { return s.uart }

// Pin returns the named digital output, creating it on first use.
func (s *Sim) Pin(name string) *SimPin {
	p, ok := s.pins[name]
	if !ok {
		p = &SimPin{}
		s.pins[name] = p
	}
	return p
}

// convert produces the reading for the selected channel at the current tick.
func (s *Sim) convert() uint16 {
	switch s.channel {
	case s.cfg.VoltageChannel:
		return s.cfg.VoltageRaw
	case s.cfg.CurrentChannel:
		return s.cfg.CurrentRaw
	default:
		return uint16(s.opto())
	}
}

// opto synthesizes the photodiode sample: DC level plus a half-sine pulse
// while a blade shadow crosses the diode, plus uniform noise.
func (s *Sim) opto() uint8 {
	v := float32(s.cfg.DCLevel)

	phase := uint16(s.now % uint64(s.cfg.PulsePeriod))
	if s.cfg.PulseWidth > 0 && phase < s.cfg.PulseWidth {
		shape := math32.Sin(math32.Pi * float32(phase) / float32(s.cfg.PulseWidth))
		v += float32(s.cfg.PulseAmplitude) * shape
	}

	if s.cfg.NoiseLevel > 0 {
		v += (s.rng.Float32()*2 - 1) * s.cfg.NoiseLevel
	}

	v = math32.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// SimUART records transmitted bytes. ReadyEvery throttles the sink so tests
// can exercise partial drains; zero means always ready.
type SimUART struct {
	ReadyEvery int
	Bytes      []byte

	polls int
}

func (u *SimUART) Ready() bool {
	if u.ReadyEvery <= 1 {
		return true
	}
	u.polls++
	return u.polls%u.ReadyEvery == 0
}

func (u *SimUART) WriteByte(b byte) { u.Bytes = append(u.Bytes, b) }

// SimPin records the state and rising transitions of a digital output.
type SimPin struct {
	High  bool
	Rises int
}

func (p *SimPin) Set(high bool) {
	if high && !p.High {
		p.Rises++
	}
	p.High = high
}

var (
	_ ByteSink   = (*SimUART)(nil)
	_ DigitalOut = (*SimPin)(nil)
)
