package container

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmtdata/internal/archive"
	"cmtdata/internal/cmterr"
	"cmtdata/internal/station"
	"cmtdata/internal/trace"
	"cmtdata/internal/waveform"
	"cmtdata/internal/winfile"
)

// ArchiveIngestOptions configures the archive/tag ingestion backend.
type ArchiveIngestOptions struct {
	// Archives maps each role (obsd, synt, and every derivative parameter)
	// to its archive path. A missing role is a hard error.
	Archives map[string]string
	// ObsdTag and SyntTag select the tagged waveform set per station. Leave
	// empty when each station carries a single tag; with multiple tags an
	// empty value is an ambiguity error.
	ObsdTag string
	SyntTag string
	// InitialWeight applies to window rows that omit their weight.
	InitialWeight float64
	// StationTable, when non-nil, takes priority over archive station
	// metadata for station geometry.
	StationTable station.Table
}

// IngestFromArchives parses a window file and loads every group through the
// archive backend: one archive per role, traces selected by station key, tag,
// and channel. Derivatives reuse the synthetic's identifier and resolved tag.
// Any failure aborts the whole call; no partial groups are kept.
func (c *DataContainer) IngestFromArchives(ctx context.Context, winfilePath string, format winfile.Format, opts ArchiveIngestOptions) error {
	start := time.Now()
	runID := uuid.NewString()

	handles, err := c.openArchives(opts.Archives)
	if err != nil {
		return err
	}
	defer func() {
		for _, a := range handles {
			_ = a.Close()
		}
	}()

	skeletons, err := winfile.Parse(winfilePath, format, opts.InitialWeight)
	if err != nil {
		return err
	}
	if len(skeletons) == 0 {
		c.logger.Warn("nothing in window file", "window_file", winfilePath)
		c.recordRun(winfilePath, runID, nil, time.Since(start))
		return nil
	}

	loaded := make([]*trace.TraceWindow, 0, len(skeletons))
	for i, skel := range skeletons {
		group, err := c.loadFromArchives(ctx, skel, handles, opts)
		if err != nil {
			return fmt.Errorf("window file %s: group %d: %w", winfilePath, i, err)
		}
		loaded = append(loaded, group)
	}

	c.groups = append(c.groups, loaded...)
	c.recordRun(winfilePath, runID, loaded, time.Since(start))
	return nil
}

// openArchives validates the role/archive mapping against the container's
// parameter list and opens every archive for the duration of the call.
func (c *DataContainer) openArchives(paths map[string]string) (map[string]*archive.Archive, error) {
	roles := append([]string{trace.RoleObsd, trace.RoleSynt}, c.parameters...)
	missing := make([]string, 0)
	for _, role := range roles {
		if _, ok := paths[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, cmterr.Wrap(cmterr.ErrConsistency, "archive map",
			fmt.Sprintf("missing archives for roles: %s", strings.Join(missing, ", ")), nil)
	}

	handles := make(map[string]*archive.Archive, len(roles))
	for _, role := range roles {
		a, err := archive.Open(paths[role])
		if err != nil {
			for _, opened := range handles {
				_ = opened.Close()
			}
			return nil, err
		}
		handles[role] = a
	}
	return handles, nil
}

func (c *DataContainer) loadFromArchives(ctx context.Context, skel *winfile.Skeleton, handles map[string]*archive.Archive, opts ArchiveIngestOptions) (*trace.TraceWindow, error) {
	obsdID, err := waveform.ParseChannelID(skel.ObsdID)
	if err != nil {
		return nil, err
	}
	syntID, err := waveform.ParseChannelID(skel.SyntID)
	if err != nil {
		return nil, err
	}

	obsd, obsdTag, err := fetchTagged(ctx, handles[trace.RoleObsd], obsdID, opts.ObsdTag)
	if err != nil {
		return nil, err
	}
	synt, syntTag, err := fetchTagged(ctx, handles[trace.RoleSynt], syntID, opts.SyntTag)
	if err != nil {
		return nil, err
	}

	datalist := map[string]*waveform.Waveform{
		trace.RoleObsd: obsd,
		trace.RoleSynt: synt,
	}
	tags := map[string]string{
		trace.RoleObsd: obsdTag,
		trace.RoleSynt: syntTag,
	}

	// Derivatives share the synthetic's station/channel identity and tag.
	for _, param := range c.parameters {
		deriv, err := handles[param].Waveform(ctx, syntID, syntTag)
		if err != nil {
			return nil, cmterr.Wrap(cmterr.ErrResolution, "derivative waveform",
				fmt.Sprintf("parameter %s for synthetic %s", param, syntID), err)
		}
		datalist[param] = deriv
		tags[param] = syntTag
	}

	group, err := trace.New(skel.Windows.Clone(), datalist, tags, c.parameters)
	if err != nil {
		return nil, err
	}

	lat, lon, err := resolveArchiveStation(ctx, obsdID, handles[trace.RoleSynt], opts.StationTable)
	if err != nil {
		return nil, err
	}
	group.SetStationCoordinates(lat, lon)
	group.EventLatitude = c.eventLatitude
	group.EventLongitude = c.eventLongitude
	group.Source = trace.SourceArchive
	return group, nil
}

// fetchTagged resolves the tag for one station (explicit tag, or the single
// stored tag) and extracts the matching trace.
func fetchTagged(ctx context.Context, a *archive.Archive, id waveform.ChannelID, explicitTag string) (*waveform.Waveform, string, error) {
	tag := explicitTag
	if tag == "" {
		tags, err := a.Tags(ctx, id.StationKey())
		if err != nil {
			return nil, "", err
		}
		switch len(tags) {
		case 0:
			return nil, "", cmterr.Wrap(cmterr.ErrResolution, "archive tags",
				fmt.Sprintf("no waveforms stored for station %s", id.StationKey()), nil)
		case 1:
			tag = tags[0]
		default:
			return nil, "", cmterr.Wrap(cmterr.ErrResolution, "archive tags",
				fmt.Sprintf("station %s has multiple tags (%s); specify one explicitly",
					id.StationKey(), strings.Join(tags, ", ")), nil)
		}
	}
	w, err := a.Waveform(ctx, id, tag)
	if err != nil {
		return nil, "", err
	}
	return w, tag, nil
}

// resolveArchiveStation resolves station geometry for the archive backend:
// the external table wins; otherwise the synthetic archive's station metadata
// (coordinates or inventory) is used.
func resolveArchiveStation(ctx context.Context, obsdID waveform.ChannelID, syntArchive *archive.Archive, table station.Table) (float64, float64, error) {
	if table != nil {
		coords, ok := table.Lookup(obsdID.Network, obsdID.Station)
		if !ok {
			return 0, 0, cmterr.Wrap(cmterr.ErrResolution, "station table",
				fmt.Sprintf("no entry for %s", obsdID.StationKey()), nil)
		}
		return coords.Latitude, coords.Longitude, nil
	}
	meta, err := syntArchive.StationMetadata(ctx, obsdID.StationKey())
	if err != nil {
		return 0, 0, err
	}
	return meta.Coordinates()
}
