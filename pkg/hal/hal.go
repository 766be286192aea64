// Package hal abstracts the board peripherals the tachometer loop needs:
// a multiplexed ADC, a free-running tick counter, a serial byte sink and
// digital outputs. Register setup, baud-rate selection and the physical
// conversion are behind these interfaces, so the signal chain runs
// unchanged against real hardware or the simulated board.
package hal

// ADC models a single-converter, multiplexed analog frontend. A conversion
// is started explicitly and completes after a hardware-dependent delay;
// the result stays readable until the next conversion finishes.
type ADC interface {
	// SelectChannel routes the given input channel to the converter.
	// Takes effect on the next Start.
	SelectChannel(ch uint8)
	// Start begins a conversion on the selected channel.
	Start()
	// Ready reports whether the last started conversion has completed.
	Ready() bool
	// Read8 returns the most recent result truncated to 8 bits.
	Read8() uint8
	// Read16 returns the most recent result at full resolution.
	Read16() uint16
}

// Clock is a free-running monotonic tick counter. It wraps modulo 2^16;
// consumers must compute deltas with wraparound-correct uint16 subtraction.
type Clock interface {
	Ticks() uint16
}

// ByteSink accepts one byte at a time for transmission. WriteByte must only
// be called when Ready reports true.
type ByteSink interface {
	Ready() bool
	WriteByte(b byte)
}

// DigitalOut drives a single output pin.
type DigitalOut interface {
	Set(high bool)
}

// Ensure the simulated board implements the converter and tick counter.
var (
	_ ADC   = (*Sim)(nil)
	_ Clock = (*Sim)(nil)
)

// Ensure the serial bridge implements ByteSink.
var _ ByteSink = (*SerialSink)(nil)
