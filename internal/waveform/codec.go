package waveform

import (
	"encoding/json"
	"fmt"
	"os"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/fileutil"
)

// Read loads one trace from the given path.
func Read(path string) (*Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "read waveform", path, err)
	}
	var w Waveform
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "decode waveform", path, err)
	}
	if w.Delta <= 0 {
		return nil, cmterr.Wrap(cmterr.ErrConsistency, "waveform",
			fmt.Sprintf("%s: non-positive sampling interval %g", path, w.Delta), nil)
	}
	return &w, nil
}

// Write stores one trace at the given path, creating parent directories as
// needed. The write is atomic so a concurrent reader never sees a partial
// trace.
func Write(path string, w *Waveform) error {
	data, err := json.Marshal(w)
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "encode waveform", path, err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "write waveform", path, err)
	}
	return nil
}

// DerivativePath locates a derivative-parameter synthetic next to its parent
// synthetic: the synthetic path with "." plus the parameter name appended.
func DerivativePath(syntPath, parameter string) string {
	return syntPath + "." + parameter
}
