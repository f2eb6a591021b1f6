package waveform

import (
	"fmt"
	"path/filepath"
	"strings"

	"cmtdata/internal/cmterr"
)

// ChannelID identifies one station component as NET.STA.LOC.CHA.
type ChannelID struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

// ParseChannelID splits a NET.STA.LOC.CHA identifier. A full path may be
// passed; only the basename is considered. Network codes are at most two
// characters and station codes longer than two; the asymmetry catches
// identifiers with network and station swapped.
func ParseChannelID(s string) (ChannelID, error) {
	base := filepath.Base(s)
	parts := strings.Split(base, ".")
	if len(parts) != 4 {
		return ChannelID{}, cmterr.Wrap(cmterr.ErrResolution, "station identifier",
			fmt.Sprintf("%q must have exactly 4 dot-separated fields (NET.STA.LOC.CHA), got %d",
				base, len(parts)), nil)
	}
	id := ChannelID{
		Network:  parts[0],
		Station:  parts[1],
		Location: parts[2],
		Channel:  parts[3],
	}
	if len(id.Network) > 2 || len(id.Station) <= 2 {
		return ChannelID{}, cmterr.Wrap(cmterr.ErrResolution, "station identifier",
			fmt.Sprintf("%q looks like network and station are swapped (network %q, station %q)",
				base, id.Network, id.Station), nil)
	}
	return id, nil
}

// StationKey returns the NET_STA key used by station tables and archives.
func (id ChannelID) StationKey() string {
	return id.Network + "_" + id.Station
}

func (id ChannelID) String() string {
	return fmt.Sprintf("%s.%s.%s.%s", id.Network, id.Station, id.Location, id.Channel)
}
