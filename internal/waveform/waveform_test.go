package waveform_test

import (
	"errors"
	"path/filepath"
	"testing"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/waveform"
)

func TestParseChannelID(t *testing.T) {
	id, err := waveform.ParseChannelID("II.AAK.00.BHZ")
	if err != nil {
		t.Fatalf("ParseChannelID failed: %v", err)
	}
	if id.Network != "II" || id.Station != "AAK" || id.Location != "00" || id.Channel != "BHZ" {
		t.Fatalf("unexpected fields: %+v", id)
	}
	if id.StationKey() != "II_AAK" {
		t.Fatalf("unexpected station key: %s", id.StationKey())
	}
	if id.String() != "II.AAK.00.BHZ" {
		t.Fatalf("unexpected string: %s", id.String())
	}
}

func TestParseChannelIDStripsPath(t *testing.T) {
	id, err := waveform.ParseChannelID("/data/event/II.AAK.00.BHZ")
	if err != nil {
		t.Fatalf("ParseChannelID failed: %v", err)
	}
	if id.Station != "AAK" {
		t.Fatalf("unexpected station: %s", id.Station)
	}
}

func TestParseChannelIDErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"three fields", "AAKII.00.BHZ"},
		{"five fields", "II.AAK.00.BHZ.extra"},
		{"swapped network and station", "AAK.II.00.BHZ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := waveform.ParseChannelID(tc.in)
			if !errors.Is(err, cmterr.ErrResolution) {
				t.Fatalf("expected resolution error for %q, got %v", tc.in, err)
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	lat, lon := 42.6, 74.5
	w := &waveform.Waveform{
		Network:          "II",
		Station:          "AAK",
		Location:         "00",
		Channel:          "BHZ",
		Begin:            -5.0,
		Delta:            0.5,
		StationLatitude:  &lat,
		StationLongitude: &lon,
		Data:             []float64{0.0, 1.5, -2.5, 3.0},
	}

	path := filepath.Join(t.TempDir(), "II.AAK.00.BHZ.json")
	if err := waveform.Write(path, w); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := waveform.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.ID() != "II.AAK.00.BHZ" {
		t.Fatalf("unexpected id: %s", got.ID())
	}
	if got.Begin != w.Begin || got.Delta != w.Delta {
		t.Fatalf("time base not preserved: %+v", got)
	}
	if !got.HasInlineCoordinates() || *got.StationLatitude != lat {
		t.Fatalf("inline coordinates not preserved: %+v", got)
	}
	if len(got.Data) != len(w.Data) || got.Data[2] != -2.5 {
		t.Fatalf("samples not preserved: %v", got.Data)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := waveform.Read(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, cmterr.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestDerivativePath(t *testing.T) {
	got := waveform.DerivativePath("data/II.AAK.00.BHZ.json", "Mrr")
	if got != "data/II.AAK.00.BHZ.json.Mrr" {
		t.Fatalf("unexpected derivative path: %s", got)
	}
}

func TestComponent(t *testing.T) {
	w := &waveform.Waveform{Channel: "BHZ"}
	if w.Component() != "Z" {
		t.Fatalf("unexpected component: %s", w.Component())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	lat, lon := 1.0, 2.0
	w := &waveform.Waveform{
		Network: "II", Station: "AAK", Location: "00", Channel: "BHZ",
		Delta: 1, StationLatitude: &lat, StationLongitude: &lon,
		Data: []float64{1, 2, 3},
	}
	cp := w.Clone()
	cp.Data[0] = 99
	*cp.StationLatitude = 99
	if w.Data[0] != 1 || *w.StationLatitude != 1.0 {
		t.Fatal("clone shares state with original")
	}
}
