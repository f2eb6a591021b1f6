package trace_test

import (
	"errors"
	"math"
	"testing"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/testsupport"
	"cmtdata/internal/trace"
	"cmtdata/internal/waveform"
	"cmtdata/internal/window"
)

func resolvedGroup(t *testing.T, windows window.List, parameters []string) *trace.TraceWindow {
	t.Helper()

	datalist := map[string]*waveform.Waveform{
		trace.RoleObsd: testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 0.5, 100, 1.0),
		trace.RoleSynt: testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 0.5, 100, 0.5),
	}
	tags := map[string]string{trace.RoleObsd: "obs", trace.RoleSynt: "syn"}
	for _, p := range parameters {
		datalist[p] = testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 0.5, 100, 0.1)
		tags[p] = "syn"
	}

	group, err := trace.New(windows, datalist, tags, parameters)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return group
}

func TestNewValidatesRoles(t *testing.T) {
	w := testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 0.5, 10, 1.0)

	// Missing derivative role.
	_, err := trace.New(nil,
		map[string]*waveform.Waveform{trace.RoleObsd: w, trace.RoleSynt: w},
		map[string]string{trace.RoleObsd: "t", trace.RoleSynt: "t"},
		[]string{"Mrr"})
	if !errors.Is(err, cmterr.ErrConsistency) {
		t.Fatalf("expected consistency error, got %v", err)
	}

	// Missing tag for a present role.
	_, err = trace.New(nil,
		map[string]*waveform.Waveform{trace.RoleObsd: w, trace.RoleSynt: w},
		map[string]string{trace.RoleObsd: "t"},
		nil)
	if !errors.Is(err, cmterr.ErrConsistency) {
		t.Fatalf("expected consistency error, got %v", err)
	}
}

func TestIdentityAccessors(t *testing.T) {
	group := resolvedGroup(t, nil, []string{"Mrr"})

	if group.Station() != "AAK" || group.Network() != "II" {
		t.Fatalf("unexpected identity: %s.%s", group.Network(), group.Station())
	}
	if group.Component() != "Z" {
		t.Fatalf("unexpected component: %s", group.Component())
	}
	if group.ObsdID() != "II.AAK.00.BHZ" || group.SyntID() != "II.AAK.00.BHZ" {
		t.Fatalf("unexpected ids: %s / %s", group.ObsdID(), group.SyntID())
	}
}

func TestObsdEnergyConstantSignal(t *testing.T) {
	// Unit-amplitude constant signal: energy over k samples at interval dt
	// is k*dt.
	w, err := window.New(0, 2.0, 1.0)
	if err != nil {
		t.Fatalf("window.New failed: %v", err)
	}
	group := resolvedGroup(t, window.List{w}, nil)

	energies, err := group.ObsdEnergy()
	if err != nil {
		t.Fatalf("ObsdEnergy failed: %v", err)
	}
	// 2.0 s at dt=0.5 covers 4 samples.
	want := 4 * 0.5
	if math.Abs(energies[0]-want) > 1e-12 {
		t.Fatalf("expected energy %g, got %g", want, energies[0])
	}
}

func TestObsdEnergyRejectsSingleSampleWindow(t *testing.T) {
	w, err := window.New(0, 0.6, 1.0)
	if err != nil {
		t.Fatalf("window.New failed: %v", err)
	}
	group := resolvedGroup(t, window.List{w}, nil)

	if _, err := group.ObsdEnergy(); !errors.Is(err, cmterr.ErrConsistency) {
		t.Fatalf("expected consistency error, got %v", err)
	}
}

func TestGeometry(t *testing.T) {
	group := resolvedGroup(t, nil, nil)
	group.EventLatitude = 0
	group.EventLongitude = 0
	group.SetStationCoordinates(0, 10)

	az := group.Azimuth()
	if math.Abs(az-90) > 1e-6 {
		t.Fatalf("expected azimuth 90 for a due-east station, got %g", az)
	}
	baz := group.BackAzimuth()
	if math.Abs(baz-270) > 1e-6 {
		t.Fatalf("expected back azimuth 270, got %g", baz)
	}

	// 10 degrees of arc along the equator.
	want := 2 * math.Pi * 6371 * 10 / 360
	if math.Abs(group.DistanceKm()-want) > 1.0 {
		t.Fatalf("expected distance ~%g km, got %g", want, group.DistanceKm())
	}
}
