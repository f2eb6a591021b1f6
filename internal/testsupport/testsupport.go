// Package testsupport provides shared fixtures for assembly-layer tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cmtdata/internal/archive"
	"cmtdata/internal/config"
	"cmtdata/internal/waveform"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

// WriteFile writes content to path, creating parent directories, and returns
// the path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ConstantWaveform builds a trace with n samples of the given value.
func ConstantWaveform(network, stationName, location, channel string, begin, delta float64, n int, value float64) *waveform.Waveform {
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	return &waveform.Waveform{
		Network:  network,
		Station:  stationName,
		Location: location,
		Channel:  channel,
		Begin:    begin,
		Delta:    delta,
		Data:     data,
	}
}

// WithInlineCoordinates stamps inline station coordinates on a trace and
// returns it.
func WithInlineCoordinates(w *waveform.Waveform, lat, lon float64) *waveform.Waveform {
	w.StationLatitude = &lat
	w.StationLongitude = &lon
	return w
}

// MustWriteWaveform writes one trace file or fails the test.
func MustWriteWaveform(t testing.TB, path string, w *waveform.Waveform) string {
	t.Helper()

	if err := waveform.Write(path, w); err != nil {
		t.Fatalf("write waveform %s: %v", path, err)
	}
	return path
}

// MustCreateArchive creates a fresh archive and registers cleanup.
func MustCreateArchive(t testing.TB, path string) *archive.Archive {
	t.Helper()

	a, err := archive.Create(path)
	if err != nil {
		t.Fatalf("create archive %s: %v", path, err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// MustAddWaveform stores a trace in an archive or fails the test.
func MustAddWaveform(t testing.TB, a *archive.Archive, w *waveform.Waveform, tag string) {
	t.Helper()

	if err := a.AddWaveform(context.Background(), w, tag); err != nil {
		t.Fatalf("add waveform %s: %v", w.ID(), err)
	}
}
