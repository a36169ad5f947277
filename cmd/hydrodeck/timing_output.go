package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hydrodeck/internal/driver"
)

func printTimings(cmd *cobra.Command, res *driver.Result) error {
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !showTimings || res.Timer == nil {
		return nil
	}
	_, err = fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	return err
}
