// Package frame builds and drains the fixed-size report sent after every
// published reading. The transmitter holds at most one frame in flight and
// never blocks: draining happens one byte at a time, opportunistically,
// whenever the caller polls it.
package frame

import (
	"encoding/binary"

	"github.com/4114241996/sapog/pkg/hal"
)

const (
	// Header is the constant marker byte opening every frame.
	Header = 0xFA
	// Size is the full frame length:
	// header [1], checksum [1], tach [2], voltage [2], current [2].
	Size = 8
)

// Transmitter owns the single frame buffer. The next-byte index doubles as
// the busy/idle gate: index == Size means idle, anything lower means a
// frame is still draining and TrySend must reject.
type Transmitter struct {
	sink   hal.ByteSink
	buf    [Size]byte
	next   int
	failed bool
}

// NewTransmitter creates an idle transmitter writing to sink.
func NewTransmitter(sink hal.ByteSink) *Transmitter {
	return &Transmitter{sink: sink, next: Size}
}

// Idle reports whether the previous frame has fully drained.
func (t *Transmitter) Idle() bool { return t.next >= Size }

// TrySend encodes a frame and marks it pending. It returns false, drops
// the reading and permanently sets the failure latch if the previous frame
// is still in flight. There is no retry; the caller surfaces the latch.
func (t *Transmitter) TrySend(period, voltage, current uint16) bool {
	if !t.Idle() {
		t.failed = true
		return false
	}

	t.buf[0] = Header
	binary.LittleEndian.PutUint16(t.buf[2:4], period)
	binary.LittleEndian.PutUint16(t.buf[4:6], voltage)
	binary.LittleEndian.PutUint16(t.buf[6:8], current)
	t.buf[1] = Checksum(t.buf[2:])

	t.next = 0
	return true
}

// DrainOne writes at most one pending byte if the sink is ready. It is
// called from every wait in the sampling loop, so transmit progress is
// never starved by a slow conversion.
func (t *Transmitter) DrainOne() {
	if t.next >= Size || !t.sink.Ready() {
		return
	}
	t.sink.WriteByte(t.buf[t.next])
	t.next++
}

// Failed reports the sticky failure latch. It is set once a frame has been
// dropped and clears only with a full restart.
func (t *Transmitter) Failed() bool { return t.failed }

// Checksum returns the 8-bit wrapping sum of the payload bytes. The header
// and the checksum slot itself are excluded.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}
