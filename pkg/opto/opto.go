// Package opto turns the noisy photodiode waveform into discrete
// blade-passage events. A sliding-window DC tracker follows slow
// ambient-light drift; the edge detector compares the residual AC signal
// against a hysteresis threshold pair so one blade shadow yields exactly
// one edge.
package opto

import "github.com/4114241996/sapog/pkg/hal"

const (
	// DefaultThreshold is the AC level that opens a peak.
	DefaultThreshold = 30
	// DefaultDCWindow is the number of samples in the DC average. Large
	// relative to a blade-shadow pulse, so the average tracks ambient
	// drift without following the transient itself.
	DefaultDCWindow = 1024
)

// DCTracker maintains the integer floor mean of the most recent samples.
// Below capacity the mean is over all samples seen so far; at capacity the
// oldest sample is evicted and the window slides.
type DCTracker struct {
	hist  []uint16
	sum   uint32
	count int
	index int
}

// NewDCTracker creates a tracker with the given window size.
func NewDCTracker(window int) *DCTracker {
	if window <= 0 {
		window = DefaultDCWindow
	}
	return &DCTracker{hist: make([]uint16, window)}
}

// Update folds one sample into the window and returns the new DC estimate.
func (t *DCTracker) Update(sample uint16) uint16 {
	if t.count == len(t.hist) {
		t.sum -= uint32(t.hist[t.index])
		t.hist[t.index] = sample
		t.sum += uint32(sample)
		t.index++
		if t.index == len(t.hist) {
			t.index = 0
		}
		return uint16(t.sum / uint32(len(t.hist)))
	}
	t.hist[t.count] = sample
	t.count++
	t.sum += uint32(sample)
	return uint16(t.sum / uint32(t.count))
}

// EdgeDetector reports the entry into each optical peak and mirrors the
// detected pulse train on a digital output, usable as an external
// tachometer signal independent of the serial link.
type EdgeDetector struct {
	dc     *DCTracker
	out    hal.DigitalOut
	high   int
	low    int
	inPeak bool
}

// NewEdgeDetector creates a detector with the given peak-entry threshold
// and DC window. The peak-exit threshold is a quarter of the entry
// threshold; the gap prevents chatter from noise near the boundary.
func NewEdgeDetector(threshold, dcWindow int, out hal.DigitalOut) *EdgeDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &EdgeDetector{
		dc:   NewDCTracker(dcWindow),
		out:  out,
		high: threshold,
		low:  threshold / 4,
	}
}

// Detect consumes one sample and reports whether a new blade passage
// started. An edge fires exactly once, on entry into the peak; no further
// edge fires until the AC signal has fallen below the exit threshold.
func (d *EdgeDetector) Detect(sample uint16) bool {
	dc := d.dc.Update(sample)
	ac := int(sample) - int(dc)

	if d.inPeak {
		if ac < d.low {
			d.inPeak = false
		}
		return false
	}

	if ac > d.high {
		d.out.Set(true)
		d.inPeak = true
		return true
	}
	d.out.Set(false)
	return false
}
