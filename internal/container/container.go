package container

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/config"
	"cmtdata/internal/trace"
)

// RunStats records what one ingestion call added, keyed by window-file path
// in the container's run log.
type RunStats struct {
	RunID   string
	Groups  int
	Windows int
	Elapsed time.Duration
}

// DataContainer owns the ordered sequence of trace groups for one event.
type DataContainer struct {
	parameters     []string
	eventLatitude  float64
	eventLongitude float64

	groups []*trace.TraceWindow
	runLog map[string]RunStats

	logger *slog.Logger
}

// New constructs a container for the given derivative parameter list and
// event coordinates. Every parameter must belong to the closed set of known
// parameters; the list is immutable afterwards.
func New(parameters []string, eventLat, eventLon float64, logger *slog.Logger) (*DataContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]struct{}, len(parameters))
	for _, p := range parameters {
		if !config.KnownParameter(p) {
			return nil, cmterr.Wrap(cmterr.ErrConsistency, "parameter list",
				fmt.Sprintf("%q is not a known derivative parameter (known: %s)",
					p, strings.Join(config.AllParameters, ", ")), nil)
		}
		if _, dup := seen[p]; dup {
			return nil, cmterr.Wrap(cmterr.ErrConsistency, "parameter list",
				fmt.Sprintf("duplicate derivative parameter %q", p), nil)
		}
		seen[p] = struct{}{}
	}
	params := make([]string, len(parameters))
	copy(params, parameters)
	return &DataContainer{
		parameters:     params,
		eventLatitude:  eventLat,
		eventLongitude: eventLon,
		runLog:         make(map[string]RunStats),
		logger:         logger,
	}, nil
}

// Parameters returns a copy of the derivative parameter list.
func (c *DataContainer) Parameters() []string {
	out := make([]string, len(c.parameters))
	copy(out, c.parameters)
	return out
}

// ParameterCount returns the number of derivative parameters.
func (c *DataContainer) ParameterCount() int {
	return len(c.parameters)
}

// Len returns the number of trace groups, in insertion order.
func (c *DataContainer) Len() int {
	return len(c.groups)
}

// At returns the trace group at the given insertion index.
func (c *DataContainer) At(i int) *trace.TraceWindow {
	return c.groups[i]
}

// Groups returns the trace groups in insertion order. The returned slice is
// a copy; the groups themselves are shared.
func (c *DataContainer) Groups() []*trace.TraceWindow {
	out := make([]*trace.TraceWindow, len(c.groups))
	copy(out, c.groups)
	return out
}

// WindowCount sums the analysis windows across all groups.
func (c *DataContainer) WindowCount() int {
	n := 0
	for _, g := range c.groups {
		n += g.WindowCount()
	}
	return n
}

// RunLog returns a copy of the per-ingestion statistics keyed by window-file
// path.
func (c *DataContainer) RunLog() map[string]RunStats {
	out := make(map[string]RunStats, len(c.runLog))
	for k, v := range c.runLog {
		out[k] = v
	}
	return out
}

func (c *DataContainer) recordRun(winfilePath, runID string, groups []*trace.TraceWindow, elapsed time.Duration) {
	windows := 0
	for _, g := range groups {
		windows += g.WindowCount()
	}
	c.runLog[winfilePath] = RunStats{
		RunID:   runID,
		Groups:  len(groups),
		Windows: windows,
		Elapsed: elapsed,
	}
	c.logger.Info("measurements loaded",
		"window_file", winfilePath,
		"run_id", runID,
		"groups", len(groups),
		"windows", windows,
		"elapsed", elapsed)
}
