package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hydrodeck/internal/diag"
	"hydrodeck/internal/diagfmt"
	"hydrodeck/internal/source"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <deck-dir|file>",
	Short: "Report the diagnostics of a deck",
	Long:  `Parse a deck directory or a single file and print every diagnostic, including the cross-reference findings`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiag,
}

func init() {
	addRunFlags(diagCmd)
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type diagOutput struct {
	format    string
	color     bool
	max       int
	withNotes bool
	pathMode  diagfmt.PathMode
}

func readDiagOutput(cmd *cobra.Command, out *os.File) (diagOutput, error) {
	var (
		o   diagOutput
		err error
	)
	if o.format, err = cmd.Flags().GetString("format"); err != nil {
		return o, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch o.format {
	case "pretty", "json", "short":
	default:
		return o, fmt.Errorf("unknown format: %s", o.format)
	}
	if o.max, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return o, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if o.color, err = useColor(cmd, out); err != nil {
		return o, err
	}
	if f := cmd.Flags().Lookup("with-notes"); f != nil {
		o.withNotes = f.Value.String() == "true"
	} else {
		o.withNotes = true
	}
	if f := cmd.Flags().Lookup("fullpath"); f != nil && f.Value.String() == "true" {
		o.pathMode = diagfmt.PathModeAbsolute
	} else {
		o.pathMode = diagfmt.PathModeRelative
	}
	return o, nil
}

func writeDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, o diagOutput) error {
	switch o.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         o.pathMode,
			Max:              o.max,
			IncludeNotes:     o.withNotes,
		})
	case "short":
		items := bag.Items()
		if o.max > 0 && len(items) > o.max {
			items = items[:o.max]
		}
		text := diag.FormatShortDiagnostics(items, fs, o.withNotes)
		if text == "" {
			return nil
		}
		_, err := io.WriteString(w, text+"\n")
		return err
	default:
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     o.color,
			PathMode:  o.pathMode,
			Max:       o.max,
			ShowNotes: o.withNotes,
		})
		return nil
	}
}

// runDiag prints the diagnostics of the deck and exits non-zero when any
// error (or, with --warnings-as-errors, any warning) was found.
func runDiag(cmd *cobra.Command, args []string) error {
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	out, err := readDiagOutput(cmd, os.Stdout)
	if err != nil {
		return err
	}

	res, err := runDeck(cmd, args[0])
	if err != nil {
		return err
	}

	bag := res.Bag
	if noWarnings {
		bag = diag.NewBag()
		for _, d := range res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning }) {
			bag.Add(d)
		}
	}
	if err := writeDiagnostics(cmd.OutOrStdout(), bag, res.FileSet, out); err != nil {
		return err
	}
	if err := printTimings(cmd, res); err != nil {
		return err
	}
	return deckExit(res, warningsAsErrors)
}
