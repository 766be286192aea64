//go:build tinygo

//go:generate tinygo flash -target=arduino-nano

package main

import (
	"context"
	"machine"
	"time"

	"github.com/4114241996/sapog/pkg/frame"
	"github.com/4114241996/sapog/pkg/loop"
	"github.com/4114241996/sapog/pkg/opto"
	"github.com/4114241996/sapog/pkg/tacho"
)

// board adapts the machine package to the loop's peripheral interfaces.
// TinyGo conversions are synchronous, so Start is a no-op and Ready is
// always true; the conversion happens inside Read.
type board struct {
	adcs    map[uint8]machine.ADC
	channel uint8
	start   time.Time
	result  uint16
}

func newBoard() *board {
	return &board{
		adcs: map[uint8]machine.ADC{
			CHAN_OPTO:    {Pin: PIN_OPTO},
			CHAN_CURRENT: {Pin: PIN_CURRENT},
			CHAN_VOLTAGE: {Pin: PIN_VOLTAGE},
		},
		start: time.Now(),
	}
}

func (b *board) SelectChannel(ch uint8) { b.channel = ch }

func (b *board) Start() { b.result = b.adcs[b.channel].Get() }

func (b *board) Ready() bool { return true }

// Read8 truncates the 16-bit left-aligned reading to its top 8 bits.
func (b *board) Read8() uint8 { return uint8(b.result >> 8) }

// Read16 returns the native 10-bit resolution.
func (b *board) Read16() uint16 { return b.result >> 6 }

// Ticks maps elapsed time onto the 250 kHz reference counter; uint16
// truncation provides the expected wrap.
func (b *board) Ticks() uint16 {
	return uint16(time.Since(b.start).Nanoseconds() / TICK_NS)
}

// uartSink drives the hardware UART one byte at a time.
type uartSink struct {
	uart *machine.UART
}

func (s *uartSink) Ready() bool { return true }

func (s *uartSink) WriteByte(b byte) { s.uart.WriteByte(b) }

// outPin drives a digital output.
type outPin struct {
	pin machine.Pin
}

func (p *outPin) Set(high bool) { p.pin.Set(high) }

func main() {
	machine.InitADC()
	PIN_RPM_OUT.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	b := newBoard()
	for _, adc := range b.adcs {
		adc.Configure(machine.ADCConfig{})
	}

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	pulse := &outPin{pin: PIN_RPM_OUT}
	led := &outPin{pin: PIN_LED}
	detector := opto.NewEdgeDetector(opto.DefaultThreshold, opto.DefaultDCWindow, pulse)
	monitor := tacho.NewMonitor(tacho.DefaultTimeoutTicks, b.Ticks())
	transmitter := frame.NewTransmitter(&uartSink{uart: uart})

	l := loop.New(loop.Params{
		OptoChannel:    CHAN_OPTO,
		VoltageChannel: CHAN_VOLTAGE,
		CurrentChannel: CHAN_CURRENT,
	}, b, b, detector, monitor, transmitter, led)

	l.Run(context.Background())
}
