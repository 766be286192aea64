// Package rpm converts raw period readings into revolutions per minute for
// host-side consumers. Instantaneous readings jitter with the optical
// geometry, so a moving average is applied before display.
package rpm

import (
	movingaverage "github.com/RobinUS2/golang-moving-average"
)

// FromPeriod converts a blade-passage period in ticks to RPM. A period of
// zero means the rotor is stalled and maps to 0 RPM.
func FromPeriod(periodTicks uint16, tickRateHz float64, bladeCount int) float64 {
	if periodTicks == 0 || tickRateHz <= 0 || bladeCount <= 0 {
		return 0
	}
	revsPerSecond := tickRateHz / (float64(periodTicks) * float64(bladeCount))
	return revsPerSecond * 60
}

// Smoother maintains a moving average over the last readings.
type Smoother struct {
	avg *movingaverage.MovingAverage
}

// NewSmoother creates a smoother with the given window size.
func NewSmoother(window int) *Smoother {
	if window <= 0 {
		window = 1
	}
	return &Smoother{avg: movingaverage.New(window)}
}

// Add folds one reading into the window and returns the smoothed value.
func (s *Smoother) Add(value float64) float64 {
	s.avg.Add(value)
	return s.avg.Avg()
}
