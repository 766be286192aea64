// Package loop is the cooperative orchestrator: it multiplexes the ADC
// between the optical channel and the two auxiliary channels, feeds
// samples through the detection chain and hands readings to the frame
// transmitter. There is a single thread of control; every component is
// mutated from exactly one call site here, so no locking is needed.
package loop

import (
	"context"

	"github.com/4114241996/sapog/pkg/frame"
	"github.com/4114241996/sapog/pkg/hal"
	"github.com/4114241996/sapog/pkg/opto"
	"github.com/4114241996/sapog/pkg/tacho"
)

type state uint8

const (
	samplingOpto state = iota
	samplingVoltage
	samplingCurrent
)

// Params selects the ADC channels and optional observers.
type Params struct {
	OptoChannel    uint8
	VoltageChannel uint8
	CurrentChannel uint8

	// OnPublish, if set, is called after every transmitted (or dropped)
	// reading with the event and the raw auxiliary samples.
	OnPublish func(ev tacho.Event, voltage, current uint16)
}

// Loop drives one sampling cycle at a time. It owns the pending reading
// between the publish decision and the frame send.
type Loop struct {
	params Params

	adc    hal.ADC
	clock  hal.Clock
	det    *opto.EdgeDetector
	mon    *tacho.Monitor
	tx     *frame.Transmitter
	status hal.DigitalOut

	state   state
	pending tacho.Event
	voltage uint16
}

// New wires the loop and starts the first conversion on the optical
// channel.
func New(params Params, adc hal.ADC, clock hal.Clock, det *opto.EdgeDetector, mon *tacho.Monitor, tx *frame.Transmitter, status hal.DigitalOut) *Loop {
	l := &Loop{
		params: params,
		adc:    adc,
		clock:  clock,
		det:    det,
		mon:    mon,
		tx:     tx,
		status: status,
	}
	l.adc.SelectChannel(params.OptoChannel)
	l.adc.Start()
	return l
}

// Step advances the loop by at most one conversion. It never blocks: the
// transmitter is drained first on every call, so a slow conversion can
// never starve serial output, and the call returns immediately when the
// converter is still busy.
func (l *Loop) Step() {
	l.tx.DrainOne()

	if !l.adc.Ready() {
		return
	}

	switch l.state {
	case samplingOpto:
		sample := uint16(l.adc.Read8())
		timestamp := l.clock.Ticks()

		edge := l.det.Detect(sample)
		if ev, ok := l.mon.Observe(edge, timestamp); ok {
			l.pending = ev
			l.adc.SelectChannel(l.params.VoltageChannel)
			l.state = samplingVoltage
		}
		l.adc.Start()

	case samplingVoltage:
		l.voltage = l.adc.Read16()
		l.adc.SelectChannel(l.params.CurrentChannel)
		l.adc.Start()
		l.state = samplingCurrent

	case samplingCurrent:
		current := l.adc.Read16()
		l.adc.SelectChannel(l.params.OptoChannel)
		l.adc.Start()
		l.publish(current)
		l.state = samplingOpto
	}
}

// publish sends the pending reading. A stalled rotor is reported as period
// zero. A still-busy transmitter drops the reading and trips the sticky
// failure latch, which is mirrored on the status output every cycle.
func (l *Loop) publish(current uint16) {
	var period uint16
	if !l.pending.TimedOut {
		period = l.pending.Period
	}

	l.tx.TrySend(period, l.voltage, current)
	l.status.Set(l.tx.Failed())

	if l.params.OnPublish != nil {
		l.params.OnPublish(l.pending, l.voltage, current)
	}
}

// Run steps the loop until ctx is cancelled. The original firmware runs
// this for the lifetime of the process; cancellation exists so hosts and
// tests can stop cleanly.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			l.Step()
		}
	}
}
