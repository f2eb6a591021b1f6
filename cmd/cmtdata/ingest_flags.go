package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cmtdata/internal/config"
	"cmtdata/internal/container"
	"cmtdata/internal/station"
	"cmtdata/internal/winfile"
)

// ingestFlags carries the shared ingestion flag set for commands that load a
// container before acting on it.
type ingestFlags struct {
	winfilePath string
	format      string
	backend     string
	tag         string
	obsdTag     string
	syntTag     string
	stationPath string
	archiveSpec []string
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.winfilePath, "winfile", "w", "", "Window file path (required)")
	cmd.Flags().StringVar(&f.format, "format", string(winfile.FormatText), "Window file format: txt or json")
	cmd.Flags().StringVar(&f.backend, "backend", "sac", "Waveform backend: sac or archive")
	cmd.Flags().StringVar(&f.tag, "tag", "untagged", "Provenance tag for path-backend loads")
	cmd.Flags().StringVar(&f.obsdTag, "obsd-tag", "", "Observed tag for archive-backend loads")
	cmd.Flags().StringVar(&f.syntTag, "synt-tag", "", "Synthetic tag for archive-backend loads")
	cmd.Flags().StringVar(&f.stationPath, "stations", "", "External station table path")
	cmd.Flags().StringArrayVar(&f.archiveSpec, "archive", nil,
		"Role to archive mapping, role=path (repeat per role)")
	_ = cmd.MarkFlagRequired("winfile")
}

func (f *ingestFlags) run(ctx context.Context, dc *container.DataContainer, cfg *config.Config) error {
	var table station.Table
	if f.stationPath != "" {
		var err error
		table, err = station.LoadTable(f.stationPath)
		if err != nil {
			return err
		}
	}

	format := winfile.Format(f.format)
	switch f.backend {
	case "sac":
		return dc.IngestFromPaths(ctx, f.winfilePath, format, container.PathIngestOptions{
			Tag:           f.tag,
			InitialWeight: cfg.Inversion.InitialWeight,
			StationTable:  table,
			CalibrateTime: cfg.Inversion.CalibrateTime,
		})
	case "archive":
		archives, err := parseArchiveSpec(f.archiveSpec)
		if err != nil {
			return err
		}
		return dc.IngestFromArchives(ctx, f.winfilePath, format, container.ArchiveIngestOptions{
			Archives:      archives,
			ObsdTag:       f.obsdTag,
			SyntTag:       f.syntTag,
			InitialWeight: cfg.Inversion.InitialWeight,
			StationTable:  table,
		})
	default:
		return fmt.Errorf("unsupported backend %q (want sac or archive)", f.backend)
	}
}

func parseArchiveSpec(specs []string) (map[string]string, error) {
	archives := make(map[string]string, len(specs))
	for _, spec := range specs {
		role, path, ok := strings.Cut(spec, "=")
		if !ok || role == "" || path == "" {
			return nil, fmt.Errorf("archive spec %q must be role=path", spec)
		}
		archives[role] = path
	}
	return archives, nil
}
