package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] <deck-dir>",
	Short: "Write a msgpack snapshot of a parsed deck",
	Long:  `Parse a deck and store the whole model (collections, failures, diagnostics) as a msgpack snapshot`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	addRunFlags(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "snapshot path (default <deck>.hdk)")
	exportCmd.Flags().Bool("with-content", false, "embed raw file bytes in the snapshot")
	exportCmd.Flags().Bool("check", false, "read the snapshot back and compare entity counts")
}

func runExport(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	withContent, err := cmd.Flags().GetBool("with-content")
	if err != nil {
		return fmt.Errorf("failed to get with-content flag: %w", err)
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	res, err := runDeck(cmd, args[0])
	if err != nil {
		return err
	}
	if output == "" {
		output = filepath.Clean(args[0]) + ".hdk"
	}
	d := res.Deck()
	if err := writeSnapshotFile(output, d, store.SnapshotOptions{WithContent: withContent}); err != nil {
		return err
	}
	if check {
		if err := checkSnapshot(output, d); err != nil {
			return err
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d collections, %d diagnostics\n", output, len(d.Collections), d.Diagnostics.Len())
	}
	return deckExit(res, false)
}

func writeSnapshotFile(path string, d *deck.Deck, opts store.SnapshotOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := store.WriteSnapshot(w, d, opts); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return w.Flush()
}

func checkSnapshot(path string, want *deck.Deck) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	got, err := store.ReadSnapshot(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("read back %s: %w", path, err)
	}
	for _, k := range deck.Kinds() {
		if a, b := want.Count(k), got.Count(k); a != b {
			return fmt.Errorf("snapshot %s: %d %s entities, deck has %d", path, b, k, a)
		}
	}
	if a, b := rawLines(want), rawLines(got); a != b {
		return fmt.Errorf("snapshot %s: %d retained lines, deck has %d", path, b, a)
	}
	if got.Diagnostics.Len() != want.Diagnostics.Len() {
		return fmt.Errorf("snapshot %s: %d diagnostics, deck has %d", path, got.Diagnostics.Len(), want.Diagnostics.Len())
	}
	return nil
}

func rawLines(d *deck.Deck) int {
	n := 0
	for _, c := range d.Collections {
		n += len(c.Raw())
	}
	return n
}
