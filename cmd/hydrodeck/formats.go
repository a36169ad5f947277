package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hydrodeck/internal/formats"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [deck-dir]",
	Short: "List the registered file formats",
	Long:  `List every registered format with its file name pattern; with a deck directory, manifest aliases are listed too`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFormats,
}

func runFormats(cmd *cobra.Command, args []string) error {
	m := &deckManifest{}
	if len(args) == 1 {
		var err error
		if m, err = loadManifest(args[0]); err != nil {
			return err
		}
	}
	reg, err := formats.NewRegistry(m.formatOptions(), m.Files)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATTERN\tGRAMMAR\tDETECT")
	for _, e := range reg.Entries() {
		detect := "-"
		if e.Detect != nil {
			detect = "content"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Pattern, e.Format, detect)
	}
	for _, pattern := range slices.Sorted(maps.Keys(m.Files)) {
		fmt.Fprintf(tw, "%s\t%s\talias\t-\n", m.Files[pattern], pattern)
	}
	return tw.Flush()
}
