// Package tacho converts edge timestamps into rotational-period readings
// and detects the rotor-stopped condition. Timestamps come from a 16-bit
// free-running counter; all deltas use wraparound-correct uint16
// subtraction, so counter overflow is expected and handled, not an error.
package tacho

// DefaultTimeoutTicks is the longest silent interval before a stall is
// reported. At the original 250 kHz tick rate this is 200 ms, which bounds
// the reporting latency for a stopped rotor.
const DefaultTimeoutTicks = 50000

// Event is a reading ready to be reported: either a measured period
// between two consecutive edges, or a stall marker.
type Event struct {
	// Period is the tick count between the two most recent edges.
	// Meaningless when TimedOut is set.
	Period uint16
	// TimedOut marks the rotor-stopped condition.
	TimedOut bool
}

// Monitor tracks the time since the last edge. It starts in the timed-out
// state, so the first edge after power-on only establishes a baseline and
// publishes nothing.
type Monitor struct {
	timeout  uint16
	prev     uint16
	timedOut bool
}

// NewMonitor creates a monitor with the given timeout window, using now as
// the initial baseline.
func NewMonitor(timeoutTicks uint16, now uint16) *Monitor {
	if timeoutTicks == 0 {
		timeoutTicks = DefaultTimeoutTicks
	}
	return &Monitor{
		timeout:  timeoutTicks,
		prev:     now,
		timedOut: true,
	}
}

// Observe consumes one sampling instant and reports whether a reading
// should be published.
//
// An edge during normal rotation yields a Measured event with the period
// since the previous edge. The first edge after a stall clears the stall
// and resets the baseline without publishing. Silence longer than the
// timeout window yields exactly one TimedOut event per stall; the next
// edge re-arms it.
func (m *Monitor) Observe(edgeFired bool, timestamp uint16) (Event, bool) {
	if edgeFired {
		if m.timedOut {
			m.timedOut = false
			m.prev = timestamp
			return Event{}, false
		}
		period := timestamp - m.prev
		m.prev = timestamp
		return Event{Period: period}, true
	}

	if !m.timedOut && timestamp-m.prev > m.timeout {
		m.timedOut = true
		m.prev = timestamp
		return Event{TimedOut: true}, true
	}
	return Event{}, false
}

// TimedOut reports whether the monitor is currently in the stalled state.
func (m *Monitor) TimedOut() bool { return m.timedOut }
