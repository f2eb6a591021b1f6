package winfile_test

import (
	"errors"
	"path/filepath"
	"testing"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/testsupport"
	"cmtdata/internal/winfile"
)

const textFixture = `2
data/II.AAK.00.BHZ.obsd.json
data/II.AAK.00.BHZ.synt.json
2
10.0 20.0
30.0 40.0 0.5
data/IU.ANMO.00.BHT.obsd.json
data/IU.ANMO.00.BHT.synt.json
1
5.0 15.0
`

func TestParseText(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "windows.txt"), textFixture)

	skeletons, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(skeletons) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(skeletons))
	}

	first := skeletons[0]
	if first.ObsdPath != "data/II.AAK.00.BHZ.obsd.json" {
		t.Fatalf("unexpected obsd path: %s", first.ObsdPath)
	}
	if len(first.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(first.Windows))
	}
	if first.Windows[0].Weight != 1.0 {
		t.Fatalf("expected default weight 1.0, got %g", first.Windows[0].Weight)
	}
	if first.Windows[1].Weight != 0.5 {
		t.Fatalf("expected explicit weight 0.5, got %g", first.Windows[1].Weight)
	}

	total := 0
	for _, s := range skeletons {
		total += len(s.Windows)
	}
	if total != 3 {
		t.Fatalf("expected 3 windows total, got %d", total)
	}
}

func TestParseTextZeroGroups(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "empty.txt"), "0\n")

	skeletons, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if err != nil {
		t.Fatalf("zero-group file should parse cleanly: %v", err)
	}
	if len(skeletons) != 0 {
		t.Fatalf("expected no groups, got %d", len(skeletons))
	}
}

func TestParseTextBadHeader(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "bad.txt"), "not-a-number\n")

	_, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseTextNegativeGroupCount(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "neg.txt"), "-1\n")

	_, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseTextNegativeWindowCount(t *testing.T) {
	content := "1\nobsd.json\nsynt.json\n-3\n"
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "negwin.txt"), content)

	_, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseTextArityMismatch(t *testing.T) {
	content := "1\nobsd.json\nsynt.json\n1\n10.0\n"
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "arity.txt"), content)

	_, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseTextTruncated(t *testing.T) {
	content := "2\nobsd.json\nsynt.json\n1\n10.0 20.0\n"
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "short.txt"), content)

	_, err := winfile.Parse(path, winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := winfile.Parse("ignored", winfile.Format("yaml"), 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := winfile.Parse(filepath.Join(t.TempDir(), "absent.txt"), winfile.FormatText, 1.0)
	if !errors.Is(err, cmterr.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

const jsonFixture = `{
  "II.AAK": {
    "BHZ": [
      {"channel_id": "II.AAK.00.BHZ", "channel_id_2": "II.AAK.S3.BHZ",
       "relative_starttime": 10.0, "relative_endtime": 20.0},
      {"channel_id": "II.AAK.00.BHZ", "channel_id_2": "II.AAK.S3.BHZ",
       "relative_starttime": 30.0, "relative_endtime": 40.0, "initial_weighting": 0.5}
    ],
    "BHT": [
      {"channel_id": "II.AAK.00.BHT", "channel_id_2": "II.AAK.S3.BHT",
       "relative_starttime": 5.0, "relative_endtime": 15.0}
    ]
  }
}`

func TestParseJSON(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "windows.json"), jsonFixture)

	skeletons, err := winfile.Parse(path, winfile.FormatJSON, 1.0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(skeletons) != 2 {
		t.Fatalf("expected 2 groups (one per channel), got %d", len(skeletons))
	}

	// Channels are visited in sorted order: BHT before BHZ.
	if skeletons[0].ObsdID != "II.AAK.00.BHT" {
		t.Fatalf("unexpected first obsd id: %s", skeletons[0].ObsdID)
	}
	bhz := skeletons[1]
	if bhz.SyntID != "II.AAK.S3.BHZ" {
		t.Fatalf("unexpected synt id: %s", bhz.SyntID)
	}
	if len(bhz.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(bhz.Windows))
	}
	if bhz.Windows[0].Weight != 1.0 || bhz.Windows[1].Weight != 0.5 {
		t.Fatalf("unexpected weights: %+v", bhz.Windows)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "bad.json"), `["not", "a", "mapping"]`)

	_, err := winfile.Parse(path, winfile.FormatJSON, 1.0)
	if !errors.Is(err, cmterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := testsupport.WriteFile(t, filepath.Join(dir, "windows.txt"), textFixture)

	skeletons, err := winfile.Parse(src, winfile.FormatText, 1.0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out := filepath.Join(dir, "rewritten.txt")
	if err := winfile.WriteText(out, skeletons); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	reparsed, err := winfile.Parse(out, winfile.FormatText, 1.0)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	if len(reparsed) != len(skeletons) {
		t.Fatalf("group count changed: %d != %d", len(reparsed), len(skeletons))
	}
	for i := range skeletons {
		if reparsed[i].ObsdPath != skeletons[i].ObsdPath || reparsed[i].SyntPath != skeletons[i].SyntPath {
			t.Fatalf("group %d paths changed", i)
		}
		if len(reparsed[i].Windows) != len(skeletons[i].Windows) {
			t.Fatalf("group %d window count changed", i)
		}
		for j := range skeletons[i].Windows {
			if reparsed[i].Windows[j] != skeletons[i].Windows[j] {
				t.Fatalf("group %d window %d changed: %+v != %+v",
					i, j, reparsed[i].Windows[j], skeletons[i].Windows[j])
			}
		}
	}
}
