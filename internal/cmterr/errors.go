// Package cmterr defines the error taxonomy shared by the assembly layer.
//
// Every failure surfaced by parsing, resolution, loading, or export is tagged
// with one of the exported sentinel errors so callers can classify failures
// with errors.Is without string matching. Wrap builds the tagged error chain
// and carries enough context (file name, group index, offending field) for the
// caller to act.
package cmterr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks unknown format selectors, malformed header counts, and
	// arity mismatches in window rows.
	ErrFormat = errors.New("format error")
	// ErrConsistency marks window/weight mismatches, degenerate window
	// durations, negative calibrated times, and parameter-list mismatches.
	ErrConsistency = errors.New("consistency error")
	// ErrResolution marks ambiguous tags, missing derivatives, unresolvable
	// station coordinates, and malformed station identifiers.
	ErrResolution = errors.New("resolution error")
	// ErrIO marks missing or unreadable files and archives.
	ErrIO = errors.New("io error")
)

// Wrap tags an error chain with the given marker and contextual detail. The
// marker should be one of the exported sentinel errors above; scope names the
// component or file, detail the offending field or value.
func Wrap(marker error, scope, detail string, err error) error {
	msg := buildDetail(scope, detail)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, msg, err)
	}
	return fmt.Errorf("%w: %s", marker, msg)
}

func buildDetail(scope, detail string) string {
	parts := make([]string, 0, 2)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		parts = append(parts, detail)
	}
	if len(parts) == 0 {
		return "assembly failure"
	}
	return strings.Join(parts, ": ")
}
