// Package winfile parses measurement window files into trace-group skeletons.
//
// Two formats are supported, selected explicitly by the caller: the legacy
// line-oriented text format and the structured JSON format. Both produce
// Skeletons, the unresolved stage of a trace group: windows plus either file
// paths (text) or trace identifiers (JSON). A loader consumes skeletons and
// produces resolved trace groups.
package winfile

import (
	"fmt"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/window"
)

// Format selects a window-file parser. There is no auto-detection.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// Skeleton is an unresolved trace group: windows and a waveform locator.
// Text-format skeletons carry file paths; JSON-format skeletons carry trace
// identifiers. Exactly one pair is populated.
type Skeleton struct {
	Windows window.List

	// Path locators (text format).
	ObsdPath string
	SyntPath string

	// Identifier locators (structured format).
	ObsdID string
	SyntID string
}

// Parse reads a window file in the given format. An unsupported format is
// rejected before any I/O. The default weight applies to any window row that
// omits its weight. A file declaring zero groups parses to an empty, valid
// result.
func Parse(path string, format Format, defaultWeight float64) ([]*Skeleton, error) {
	switch format {
	case FormatText:
		return parseText(path, defaultWeight)
	case FormatJSON:
		return parseJSON(path, defaultWeight)
	default:
		return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
			fmt.Sprintf("unsupported format %q (want %q or %q)", format, FormatText, FormatJSON), nil)
	}
}
