// Package trace holds the resolved per-station-component measurement bundle.
//
// A TraceWindow carries the observed trace, the synthetic trace, one
// derivative synthetic per inversion parameter, the analysis windows with
// their initial weights, and the station/event geometry. Groups are produced
// by a loader from a window-file skeleton and are read many times by the
// inversion consumer; after inversion a group may gain an updated synthetic
// under the RoleNewSynt key for re-export.
package trace

import (
	"fmt"
	"sort"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/waveform"
	"cmtdata/internal/window"
)

// Role names for the datalist and tag maps.
const (
	RoleObsd    = "obsd"
	RoleSynt    = "synt"
	RoleNewSynt = "new_synt"
)

// Source records which backend populated a group.
type Source string

const (
	SourceSAC     Source = "sac"
	SourceArchive Source = "archive"
)

// TraceWindow is one fully resolved trace group.
type TraceWindow struct {
	Windows  window.List
	Datalist map[string]*waveform.Waveform
	Tags     map[string]string

	StationLatitude  float64
	StationLongitude float64

	EventLatitude  float64
	EventLongitude float64

	Source Source

	// SourcePaths records the files each role was loaded from; populated by
	// the path-convention backend only.
	SourcePaths map[string]string
}

// New validates a resolved group. The datalist must hold exactly the obsd and
// synt roles plus one entry per derivative parameter, with a tag for each.
func New(windows window.List, datalist map[string]*waveform.Waveform,
	tags map[string]string, parameters []string) (*TraceWindow, error) {
	required := make(map[string]struct{}, len(parameters)+2)
	required[RoleObsd] = struct{}{}
	required[RoleSynt] = struct{}{}
	for _, p := range parameters {
		required[p] = struct{}{}
	}
	if len(datalist) != len(required) {
		return nil, cmterr.Wrap(cmterr.ErrConsistency, "trace group",
			fmt.Sprintf("datalist has %d roles, expected %d (%v)",
				len(datalist), len(required), roleNames(required)), nil)
	}
	for role := range required {
		if datalist[role] == nil {
			return nil, cmterr.Wrap(cmterr.ErrConsistency, "trace group",
				fmt.Sprintf("missing role %q in datalist", role), nil)
		}
		if _, ok := tags[role]; !ok {
			return nil, cmterr.Wrap(cmterr.ErrConsistency, "trace group",
				fmt.Sprintf("missing provenance tag for role %q", role), nil)
		}
	}
	return &TraceWindow{
		Windows:  windows,
		Datalist: datalist,
		Tags:     tags,
	}, nil
}

func roleNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetStationCoordinates records the resolved station position. Coordinates
// are always set as a pair, never partially.
func (t *TraceWindow) SetStationCoordinates(lat, lon float64) {
	t.StationLatitude = lat
	t.StationLongitude = lon
}

// Obsd returns the observed trace.
func (t *TraceWindow) Obsd() *waveform.Waveform { return t.Datalist[RoleObsd] }

// Synt returns the synthetic trace.
func (t *TraceWindow) Synt() *waveform.Waveform { return t.Datalist[RoleSynt] }

// NewSynt returns the updated synthetic, or nil when inversion has not run.
func (t *TraceWindow) NewSynt() *waveform.Waveform { return t.Datalist[RoleNewSynt] }

// ObsdID returns the observed trace identifier.
func (t *TraceWindow) ObsdID() string { return t.Obsd().ID() }

// SyntID returns the synthetic trace identifier.
func (t *TraceWindow) SyntID() string { return t.Synt().ID() }

// Station returns the station code of the observed trace.
func (t *TraceWindow) Station() string { return t.Obsd().Station }

// Network returns the network code of the observed trace.
func (t *TraceWindow) Network() string { return t.Obsd().Network }

// Location returns the location code of the observed trace.
func (t *TraceWindow) Location() string { return t.Obsd().Location }

// Channel returns the channel code of the observed trace.
func (t *TraceWindow) Channel() string { return t.Obsd().Channel }

// Component returns the final letter of the observed channel code.
func (t *TraceWindow) Component() string { return t.Obsd().Component() }

// WindowCount returns the number of analysis windows in the group.
func (t *TraceWindow) WindowCount() int { return len(t.Windows) }

// ObsdEnergy computes, per window, the energy of the observed trace:
// sum of squared samples times the sampling interval. A window resolving to
// one sample or fewer is a consistency error.
func (t *TraceWindow) ObsdEnergy() ([]float64, error) {
	obsd := t.Obsd()
	energies := make([]float64, len(t.Windows))
	for i, w := range t.Windows {
		start, end, err := w.SampleSpan(obsd.Delta)
		if err != nil {
			return nil, err
		}
		if start < 0 || end > len(obsd.Data) {
			return nil, cmterr.Wrap(cmterr.ErrConsistency, "window energy",
				fmt.Sprintf("window %d [%g, %g] is outside trace %s (%d samples)",
					i, w.Start, w.End, obsd.ID(), len(obsd.Data)), nil)
		}
		var sum float64
		for _, v := range obsd.Data[start:end] {
			sum += v * v
		}
		energies[i] = sum * obsd.Delta
	}
	return energies, nil
}
