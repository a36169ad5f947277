package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/diagfmt"
	"hydrodeck/internal/driver"
	"hydrodeck/internal/observ"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <deck-dir|file>",
	Short: "Parse a deck and summarise its entities",
	Long:  `Parse every file of a deck directory (or one file), validate cross references and print what was read`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	addRunFlags(parseCmd)
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
}

type fileReport struct {
	Path       string         `json:"path"`
	Format     string         `json:"format,omitempty"`
	Status     string         `json:"status"`
	Entities   int            `json:"entities"`
	Unparsed   int            `json:"unparsed,omitempty"` // lines kept verbatim
	Kinds      map[string]int `json:"kinds,omitempty"`
	DurationMS float64        `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

type parseReport struct {
	Dir         string                    `json:"dir"`
	Files       []fileReport              `json:"files"`
	Totals      map[string]int            `json:"totals"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
	Timings     *observ.Report            `json:"timings,omitempty"`
}

func buildFileReports(res *driver.Result) []fileReport {
	out := make([]fileReport, 0, len(res.Files))
	for i := range res.Files {
		f := &res.Files[i]
		r := fileReport{
			Path:       f.Path,
			Format:     f.Format,
			Status:     f.Status().String(),
			DurationMS: float64(f.Dur.Microseconds()) / 1000,
		}
		if f.Err != nil {
			r.Error = f.Err.Error()
		}
		if c := f.Collection; c != nil {
			r.Entities = c.Len()
			r.Unparsed = len(c.Raw())
			r.Kinds = make(map[string]int)
			for _, k := range c.Kinds() {
				r.Kinds[k.String()] = c.Count(k)
			}
		}
		out = append(out, r)
	}
	return out
}

func kindTotals(d *deck.Deck) map[string]int {
	totals := make(map[string]int)
	for _, k := range deck.Kinds() {
		if n := d.Count(k); n > 0 {
			totals[k.String()] = n
		}
	}
	return totals
}

func runParse(cmd *cobra.Command, args []string) error {
	out, err := readDiagOutput(cmd, os.Stderr)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	res, err := runDeck(cmd, args[0])
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	switch out.format {
	case "json":
		report := parseReport{
			Dir:    res.Dir,
			Files:  buildFileReports(res),
			Totals: kindTotals(res.Deck()),
			Diagnostics: diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         out.pathMode,
				Max:              out.max,
				IncludeNotes:     true,
			}),
		}
		if showTimings {
			t := res.Timer.Report()
			report.Timings = &t
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return deckExit(res, false)
	case "short":
		if err := writeDiagnostics(stdout, res.Bag, res.FileSet, out); err != nil {
			return err
		}
		for _, r := range buildFileReports(res) {
			fmt.Fprintf(stdout, "%s %s %s %d\n", r.Status, filepath.Base(r.Path), valueOr(r.Format, "-"), r.Entities)
		}
	default:
		if res.Bag.Len() > 0 {
			if err := writeDiagnostics(cmd.ErrOrStderr(), res.Bag, res.FileSet, out); err != nil {
				return err
			}
		}
		printSummary(stdout, res, out.color)
	}
	if err := printTimings(cmd, res); err != nil {
		return err
	}
	return deckExit(res, false)
}

func printSummary(w io.Writer, res *driver.Result, useColor bool) {
	statusColor := func(s driver.Status) *color.Color {
		c := color.New(color.FgGreen)
		switch s {
		case driver.StatusWarnings:
			c = color.New(color.FgYellow)
		case driver.StatusFailed:
			c = color.New(color.FgRed, color.Bold)
		case driver.StatusSkipped:
			c = color.New(color.Faint)
		}
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	for i, r := range buildFileReports(res) {
		st := res.Files[i].Status()
		fmt.Fprintf(w, "%s %-24s %-10s %6d entities\n",
			statusColor(st).Sprintf("%-8s", r.Status), filepath.Base(r.Path), valueOr(r.Format, "-"), r.Entities)
	}
	d := res.Deck()
	fmt.Fprintf(w, "%d files, %d parsed, %d failed, %d skipped; %d errors, %d warnings\n",
		len(res.Files), len(d.Collections), len(d.Failed), len(d.Skipped),
		res.Bag.Count(diag.SevError), res.Bag.Count(diag.SevWarning))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
