// Package waveform holds the single-trace data model and its on-disk codec.
//
// A Waveform carries the trace identity (network, station, location, channel),
// the time base (recorded begin offset and sampling interval), optional inline
// station coordinates, and the samples. The codec stores one trace per file;
// derivative synthetics follow the path convention of appending "." plus the
// parameter name to the synthetic path.
package waveform

import (
	"fmt"
)

// Waveform is one trace for one station component.
type Waveform struct {
	Network  string `json:"network"`
	Station  string `json:"station"`
	Location string `json:"location"`
	Channel  string `json:"channel"`

	// Begin is the recorded start-time offset in seconds relative to the
	// reference (event) time. Legacy window files carry times in this base.
	Begin float64 `json:"begin"`
	// Delta is the sampling interval in seconds.
	Delta float64 `json:"delta"`

	// Inline station coordinates, present only when the producing tool
	// stamped them on the trace.
	StationLatitude  *float64 `json:"station_latitude,omitempty"`
	StationLongitude *float64 `json:"station_longitude,omitempty"`

	Data []float64 `json:"data"`
}

// ID returns the canonical NET.STA.LOC.CHA identifier of the trace.
func (w *Waveform) ID() string {
	return fmt.Sprintf("%s.%s.%s.%s", w.Network, w.Station, w.Location, w.Channel)
}

// StationKey returns the NET_STA key used by station tables and archives.
func (w *Waveform) StationKey() string {
	return w.Network + "_" + w.Station
}

// Component returns the final letter of the channel code (R, T, or Z for
// rotated components).
func (w *Waveform) Component() string {
	if w.Channel == "" {
		return ""
	}
	return w.Channel[len(w.Channel)-1:]
}

// HasInlineCoordinates reports whether both inline station coordinates are
// present.
func (w *Waveform) HasInlineCoordinates() bool {
	return w.StationLatitude != nil && w.StationLongitude != nil
}

// Clone returns a deep copy so no samples are shared across trace groups.
func (w *Waveform) Clone() *Waveform {
	cp := *w
	if w.StationLatitude != nil {
		lat := *w.StationLatitude
		cp.StationLatitude = &lat
	}
	if w.StationLongitude != nil {
		lon := *w.StationLongitude
		cp.StationLongitude = &lon
	}
	cp.Data = make([]float64, len(w.Data))
	copy(cp.Data, w.Data)
	return &cp
}
