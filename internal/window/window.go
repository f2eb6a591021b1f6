// Package window models measurement time-windows on a waveform.
//
// A Window is a start/end pair in seconds plus the initial weight read from
// the window file. Windows are kept in file order; they are not required to be
// time-sorted. Calibration shifts window times from a legacy relative time
// base onto the loaded waveform's own time base.
package window

import (
	"fmt"

	"cmtdata/internal/cmterr"
)

// Window is one analysis time-window with its initial weight.
type Window struct {
	Start  float64
	End    float64
	Weight float64
}

// New validates and constructs a window. Start must precede End; the
// minimum-duration check against the sampling interval happens lazily at
// energy-computation time because the waveform is not loaded yet.
func New(start, end, weight float64) (Window, error) {
	if start >= end {
		return Window{}, cmterr.Wrap(cmterr.ErrConsistency, "window",
			fmt.Sprintf("start (%g) must be before end (%g)", start, end), nil)
	}
	return Window{Start: start, End: end, Weight: weight}, nil
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// SampleSpan maps the window onto sample indices for the given sampling
// interval. The span must cover at least two samples.
func (w Window) SampleSpan(delta float64) (int, int, error) {
	if delta <= 0 {
		return 0, 0, cmterr.Wrap(cmterr.ErrConsistency, "window",
			fmt.Sprintf("non-positive sampling interval %g", delta), nil)
	}
	start := int(w.Start / delta)
	end := int(w.End / delta)
	if end-start <= 1 {
		return 0, 0, cmterr.Wrap(cmterr.ErrConsistency, "window",
			fmt.Sprintf("window [%g, %g] spans %d samples at dt=%g, need at least 2",
				w.Start, w.End, end-start, delta), nil)
	}
	return start, end, nil
}

// List is an ordered sequence of windows belonging to one trace group.
type List []Window

// Calibrate shifts every window by subtracting shift from both bounds. Any
// window left with a negative bound after the shift indicates the window file
// and the waveform start-time convention disagree, which is a hard error.
func (l List) Calibrate(shift float64) error {
	for i := range l {
		l[i].Start -= shift
		l[i].End -= shift
	}
	for i, w := range l {
		if w.Start < 0 || w.End < 0 {
			return cmterr.Wrap(cmterr.ErrConsistency, "window calibration",
				fmt.Sprintf("window %d is negative after shifting by %g: [%g, %g]",
					i, shift, w.Start, w.End), nil)
		}
	}
	return nil
}

// Clone returns an independent copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}
