package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Ingest a window file and print the container summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, cfg, err := ctx.newContainer()
			if err != nil {
				return err
			}
			if err := flags.run(cmd.Context(), dc, cfg); err != nil {
				return err
			}

			s, err := dc.Summary()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Derivative parameters", strings.Join(s.Parameters, ", ")},
				{"Trace groups", fmt.Sprintf("%d (Z %d, R %d, T %d)",
					s.Groups, s.ComponentGroups["Z"], s.ComponentGroups["R"], s.ComponentGroups["T"])},
				{"Windows", fmt.Sprintf("%d (Z %d, R %d, T %d)",
					s.Windows, s.ComponentWindows["Z"], s.ComponentWindows["R"], s.ComponentWindows["T"])},
				{"Loading time", s.Elapsed.String()},
			}
			cmd.Println(renderTable([]string{"Summary", ""}, rows))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
