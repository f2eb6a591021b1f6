// Package station resolves station geometry for trace groups.
//
// Coordinates come from one of three sources, first match wins: an externally
// supplied station table, inline coordinates stamped on the loaded synthetic,
// or archive station metadata. Archive metadata carries either a direct
// coordinate record or a full inventory whose first entry is authoritative;
// the variant is resolved once at load time, never re-probed.
package station

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cmtdata/internal/cmterr"
)

// Coordinates is one station-table row.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Table maps NET_STA keys to station coordinates.
type Table map[string]Coordinates

// LoadTable reads a whitespace-separated station list with columns
// `station network latitude longitude elevation ...`. Extra columns are
// ignored; blank lines are skipped.
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "open station table", path, err)
	}
	defer f.Close()

	table := make(Table)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, cmterr.Wrap(cmterr.ErrFormat, "station table",
				fmt.Sprintf("%s:%d: expected at least 5 columns, got %d", path, line, len(fields)), nil)
		}
		values := make([]float64, 3)
		for i, col := range fields[2:5] {
			v, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, cmterr.Wrap(cmterr.ErrFormat, "station table",
					fmt.Sprintf("%s:%d: column %d is not numeric: %q", path, line, i+3, col), err)
			}
			values[i] = v
		}
		key := fields[1] + "_" + fields[0]
		table[key] = Coordinates{Latitude: values[0], Longitude: values[1], Elevation: values[2]}
	}
	if err := scanner.Err(); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "read station table", path, err)
	}
	return table, nil
}

// Lookup resolves the coordinates for a network/station pair.
func (t Table) Lookup(network, stationName string) (Coordinates, bool) {
	c, ok := t[network+"_"+stationName]
	return c, ok
}
