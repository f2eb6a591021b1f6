package container

import (
	"fmt"
	"time"

	"cmtdata/internal/cmterr"
)

// Summary aggregates container contents by rotated component.
type Summary struct {
	Parameters       []string
	Groups           int
	Windows          int
	ComponentGroups  map[string]int
	ComponentWindows map[string]int
	Elapsed          time.Duration
}

// Summary tallies groups and windows per component (Z, R, T). A channel
// ending in any other letter is an error.
func (c *DataContainer) Summary() (Summary, error) {
	s := Summary{
		Parameters:       c.Parameters(),
		Groups:           len(c.groups),
		ComponentGroups:  map[string]int{"Z": 0, "R": 0, "T": 0},
		ComponentWindows: map[string]int{"Z": 0, "R": 0, "T": 0},
	}
	for _, group := range c.groups {
		component := group.Component()
		if _, ok := s.ComponentGroups[component]; !ok {
			return Summary{}, cmterr.Wrap(cmterr.ErrConsistency, "summary",
				fmt.Sprintf("unrecognized component in %s.%s channel %s",
					group.Station(), group.Network(), group.Channel()), nil)
		}
		s.ComponentGroups[component]++
		s.ComponentWindows[component] += group.WindowCount()
		s.Windows += group.WindowCount()
	}
	for _, stats := range c.runLog {
		s.Elapsed += stats.Elapsed
	}
	return s, nil
}

// LogSummary writes the container summary through the container's logger.
func (c *DataContainer) LogSummary() error {
	s, err := c.Summary()
	if err != nil {
		return err
	}
	c.logger.Info("data summary",
		"derivative_parameters", len(s.Parameters),
		"parameters", s.Parameters,
		"groups", s.Groups,
		"groups_zrt", []int{s.ComponentGroups["Z"], s.ComponentGroups["R"], s.ComponentGroups["T"]},
		"windows", s.Windows,
		"windows_zrt", []int{s.ComponentWindows["Z"], s.ComponentWindows["R"], s.ComponentWindows["T"]},
		"elapsed", s.Elapsed)
	return nil
}
