package winfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/window"
)

// jsonRecord is one window entry in the structured format.
type jsonRecord struct {
	ChannelID        string   `json:"channel_id"`
	ChannelID2       string   `json:"channel_id_2"`
	RelativeStart    float64  `json:"relative_starttime"`
	RelativeEnd      float64  `json:"relative_endtime"`
	InitialWeighting *float64 `json:"initial_weighting,omitempty"`
}

// parseJSON reads the structured window format: a nested mapping from station
// to channel to window records. All windows under one channel entry become
// one skeleton; the first record's identifiers name the observed and
// synthetic traces. Stations and channels are visited in sorted order so the
// resulting group order is deterministic.
func parseJSON(path string, defaultWeight float64) ([]*Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "open window file", path, err)
	}

	var content map[string]map[string][]jsonRecord
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
			fmt.Sprintf("%s: not a station/channel/window mapping", path), err)
	}

	stations := make([]string, 0, len(content))
	for s := range content {
		stations = append(stations, s)
	}
	sort.Strings(stations)

	var skeletons []*Skeleton
	for _, sta := range stations {
		channels := make([]string, 0, len(content[sta]))
		for c := range content[sta] {
			channels = append(channels, c)
		}
		sort.Strings(channels)

		for _, cha := range channels {
			records := content[sta][cha]
			if len(records) == 0 {
				continue
			}
			windows := make(window.List, 0, len(records))
			for i, rec := range records {
				weight := defaultWeight
				if rec.InitialWeighting != nil {
					weight = *rec.InitialWeighting
				}
				w, err := window.New(rec.RelativeStart, rec.RelativeEnd, weight)
				if err != nil {
					return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
						fmt.Sprintf("%s: station %s channel %s window %d", path, sta, cha, i), err)
				}
				windows = append(windows, w)
			}
			skeletons = append(skeletons, &Skeleton{
				Windows: windows,
				ObsdID:  records[0].ChannelID,
				SyntID:  records[0].ChannelID2,
			})
		}
	}
	return skeletons, nil
}
