package station

import (
	"fmt"

	"cmtdata/internal/cmterr"
)

// MetadataKind distinguishes the two archive station-metadata sub-schemas.
type MetadataKind int

const (
	// Inline metadata is a direct coordinate record on the station entry.
	Inline MetadataKind = iota
	// Inventory metadata is a full instrument-response-style inventory; the
	// first entry's coordinates are authoritative.
	Inventory
)

// Entry is one inventory record.
type Entry struct {
	Latitude  float64
	Longitude float64
}

// Metadata is the tagged station-metadata variant resolved from an archive.
type Metadata struct {
	Kind      MetadataKind
	Latitude  float64 // Inline only
	Longitude float64 // Inline only
	Entries   []Entry // Inventory only
}

// InlineMetadata builds a direct-coordinate metadata record.
func InlineMetadata(lat, lon float64) Metadata {
	return Metadata{Kind: Inline, Latitude: lat, Longitude: lon}
}

// InventoryMetadata builds an inventory metadata record.
func InventoryMetadata(entries []Entry) Metadata {
	return Metadata{Kind: Inventory, Entries: entries}
}

// Coordinates extracts the station position from the metadata variant.
func (m Metadata) Coordinates() (float64, float64, error) {
	switch m.Kind {
	case Inline:
		return m.Latitude, m.Longitude, nil
	case Inventory:
		if len(m.Entries) == 0 {
			return 0, 0, cmterr.Wrap(cmterr.ErrResolution, "station metadata",
				"inventory has no entries", nil)
		}
		return m.Entries[0].Latitude, m.Entries[0].Longitude, nil
	default:
		return 0, 0, cmterr.Wrap(cmterr.ErrResolution, "station metadata",
			fmt.Sprintf("unknown metadata kind %d", m.Kind), nil)
	}
}
