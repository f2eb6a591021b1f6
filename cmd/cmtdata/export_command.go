package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cmtdata/internal/trace"
	"cmtdata/internal/waveform"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	flags := &ingestFlags{}
	var outputPath string
	var mode string
	var referencePath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export updated synthetics, per file or per tagged archive",
		Long: strings.TrimSpace(`
Re-export updated synthetics produced by an inversion run. The container is
ingested with the path backend; each group's updated synthetic is read from
the synthetic path with ".new" appended. Mode "file" writes one waveform file
per group into the output directory; mode "archive" writes one deduplicated
archive per tag and copies station metadata from the reference archive.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, cfg, err := ctx.newContainer()
			if err != nil {
				return err
			}
			if err := flags.run(cmd.Context(), dc, cfg); err != nil {
				return err
			}
			if err := attachUpdatedSynthetics(dc.Groups()); err != nil {
				return err
			}

			switch mode {
			case "file":
				return dc.ExportPerFile(outputPath)
			case "archive":
				if referencePath == "" {
					return fmt.Errorf("archive mode requires --reference")
				}
				written, err := dc.ExportArchive(cmd.Context(), outputPath, referencePath)
				if err != nil {
					return err
				}
				for _, path := range written {
					cmd.Println(path)
				}
				return nil
			default:
				return fmt.Errorf("unsupported mode %q (want file or archive)", mode)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output directory (file mode) or archive path (archive mode)")
	cmd.Flags().StringVar(&mode, "mode", "file", "Export mode: file or archive")
	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference archive for station metadata (archive mode)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// attachUpdatedSynthetics loads each group's updated synthetic from the path
// convention used by the inversion tool: the ingested synthetic's path with
// ".new" appended.
func attachUpdatedSynthetics(groups []*trace.TraceWindow) error {
	for _, group := range groups {
		syntPath := group.SourcePaths[trace.RoleSynt]
		if syntPath == "" {
			return fmt.Errorf("group %s was not loaded from paths; export requires the sac backend",
				group.SyntID())
		}
		updated, err := waveform.Read(waveform.DerivativePath(syntPath, "new"))
		if err != nil {
			return fmt.Errorf("updated synthetic for %s: %w", group.SyntID(), err)
		}
		group.Datalist[trace.RoleNewSynt] = updated
		group.Tags[trace.RoleNewSynt] = group.Tags[trace.RoleSynt]
	}
	return nil
}
