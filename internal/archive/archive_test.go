package archive_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cmtdata/internal/archive"
	"cmtdata/internal/cmterr"
	"cmtdata/internal/station"
	"cmtdata/internal/testsupport"
	"cmtdata/internal/waveform"
)

func TestOpenMissingArchive(t *testing.T) {
	_, err := archive.Open(filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, cmterr.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestWaveformRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "synt.db")
	a := testsupport.MustCreateArchive(t, path)

	w := testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", -2.5, 0.5, 10, 1.0)
	testsupport.MustAddWaveform(t, a, w, "T40")

	id, err := waveform.ParseChannelID("II.AAK.00.BHZ")
	if err != nil {
		t.Fatalf("ParseChannelID failed: %v", err)
	}
	got, err := a.Waveform(ctx, id, "T40")
	if err != nil {
		t.Fatalf("Waveform failed: %v", err)
	}
	if got.ID() != "II.AAK.00.BHZ" || got.Begin != -2.5 || got.Delta != 0.5 {
		t.Fatalf("unexpected waveform: %+v", got)
	}
	if len(got.Data) != 10 || got.Data[0] != 1.0 {
		t.Fatalf("samples not preserved: %v", got.Data)
	}

	if _, err := a.Waveform(ctx, id, "other-tag"); !errors.Is(err, cmterr.ErrResolution) {
		t.Fatalf("expected resolution error for unknown tag, got %v", err)
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	a := testsupport.MustCreateArchive(t, filepath.Join(t.TempDir(), "obsd.db"))

	testsupport.MustAddWaveform(t, a,
		testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 1, 4, 1.0), "proc_40s")
	testsupport.MustAddWaveform(t, a,
		testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 1, 4, 1.0), "proc_90s")
	testsupport.MustAddWaveform(t, a,
		testsupport.ConstantWaveform("IU", "ANMO", "00", "BHZ", 0, 1, 4, 1.0), "proc_40s")

	tags, err := a.Tags(ctx, "II_AAK")
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 2 || tags[0] != "proc_40s" || tags[1] != "proc_90s" {
		t.Fatalf("unexpected tags: %v", tags)
	}

	tags, err = a.Tags(ctx, "XX_NONE")
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestStationMetadataPriority(t *testing.T) {
	ctx := context.Background()
	a := testsupport.MustCreateArchive(t, filepath.Join(t.TempDir(), "meta.db"))

	// Coordinates take priority when both sub-schemas are present.
	if err := a.AddCoordinates(ctx, "II_AAK", 42.6, 74.5, 1645); err != nil {
		t.Fatalf("AddCoordinates failed: %v", err)
	}
	if err := a.AddInventory(ctx, "II_AAK", []station.Entry{{Latitude: 1, Longitude: 2}}); err != nil {
		t.Fatalf("AddInventory failed: %v", err)
	}

	meta, err := a.StationMetadata(ctx, "II_AAK")
	if err != nil {
		t.Fatalf("StationMetadata failed: %v", err)
	}
	if meta.Kind != station.Inline {
		t.Fatalf("expected inline metadata, got kind %d", meta.Kind)
	}
	lat, lon, err := meta.Coordinates()
	if err != nil || lat != 42.6 || lon != 74.5 {
		t.Fatalf("unexpected coordinates: %g, %g, %v", lat, lon, err)
	}
}

func TestStationMetadataInventoryFallback(t *testing.T) {
	ctx := context.Background()
	a := testsupport.MustCreateArchive(t, filepath.Join(t.TempDir(), "meta.db"))

	entries := []station.Entry{{Latitude: 34.9, Longitude: -106.5}, {Latitude: 0, Longitude: 0}}
	if err := a.AddInventory(ctx, "IU_ANMO", entries); err != nil {
		t.Fatalf("AddInventory failed: %v", err)
	}

	meta, err := a.StationMetadata(ctx, "IU_ANMO")
	if err != nil {
		t.Fatalf("StationMetadata failed: %v", err)
	}
	if meta.Kind != station.Inventory || len(meta.Entries) != 2 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	lat, _, err := meta.Coordinates()
	if err != nil || lat != 34.9 {
		t.Fatalf("expected first entry latitude, got %g, %v", lat, err)
	}
}

func TestStationMetadataNeitherSchema(t *testing.T) {
	ctx := context.Background()
	a := testsupport.MustCreateArchive(t, filepath.Join(t.TempDir(), "meta.db"))

	_, err := a.StationMetadata(ctx, "XX_NONE")
	if !errors.Is(err, cmterr.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestCopyStationMetadata(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := testsupport.MustCreateArchive(t, filepath.Join(dir, "src.db"))
	dst := testsupport.MustCreateArchive(t, filepath.Join(dir, "dst.db"))

	if err := src.AddCoordinates(ctx, "II_AAK", 42.6, 74.5, 1645); err != nil {
		t.Fatalf("AddCoordinates failed: %v", err)
	}
	if err := src.AddInventory(ctx, "IU_ANMO", []station.Entry{{Latitude: 34.9, Longitude: -106.5}}); err != nil {
		t.Fatalf("AddInventory failed: %v", err)
	}

	if err := src.CopyStationMetadata(ctx, dst); err != nil {
		t.Fatalf("CopyStationMetadata failed: %v", err)
	}

	keys, err := dst.MetadataStations(ctx)
	if err != nil {
		t.Fatalf("MetadataStations failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 stations copied, got %v", keys)
	}
	meta, err := dst.StationMetadata(ctx, "IU_ANMO")
	if err != nil || meta.Kind != station.Inventory {
		t.Fatalf("inventory sub-schema not preserved: %+v, %v", meta, err)
	}
}

func TestCreateOverwritesExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.db")

	first, err := archive.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	testsupport.MustAddWaveform(t, first,
		testsupport.ConstantWaveform("II", "AAK", "00", "BHZ", 0, 1, 4, 1.0), "old")
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := archive.Create(path)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	defer second.Close()

	n, err := second.WaveformCount(ctx)
	if err != nil {
		t.Fatalf("WaveformCount failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty archive after recreate, got %d waveforms", n)
	}
}
