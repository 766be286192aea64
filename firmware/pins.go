//go:build tinygo

package main

import "machine"

// Arduino Nano v3 wiring, matching the reference hardware:
//   A7 - voltage transducer input
//   A6 - current transducer input
//   A0 - Vishay BPW24R photodiode (cathode; anode to GND)
//   D2 - RPM signal output
const (
	PIN_OPTO    = machine.ADC0
	PIN_CURRENT = machine.ADC6
	PIN_VOLTAGE = machine.ADC7
	PIN_RPM_OUT = machine.D2
	PIN_LED     = machine.LED
)

const (
	CHAN_OPTO    uint8 = 0
	CHAN_CURRENT uint8 = 6
	CHAN_VOLTAGE uint8 = 7
)

const (
	UART_BAUD_RATE = 115200

	// TICK_NS is the tick period of the 250 kHz reference counter.
	TICK_NS = 4000
)
