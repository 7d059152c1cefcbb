package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

func newTimeblocksCmd() *cobra.Command {
	var (
		start    string
		interval string
		count    int
		check    string
	)

	cmd := &cobra.Command{
		Use:   "timeblocks",
		Short: "Print a generated times string, or validate one with --check",
		Example: `  orchestrator timeblocks
  orchestrator timeblocks --start 10:00 --interval 90m --count 4
  orchestrator timeblocks --check "09:00-11:00,10:30-12:00"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if check != "" {
				windows, err := timeblock.Parse(check)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "ok: %d blocks\n", len(windows))
				return nil
			}

			clock, err := timeblock.ParseClock(start)
			if err != nil {
				return err
			}
			d, err := time.ParseDuration(interval)
			if err != nil {
				return err
			}
			schedule := timeblock.Schedule{Start: clock, Interval: d, Count: count}
			if err := schedule.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(out, schedule.Generate())
			return nil
		},
	}

	def := timeblock.DefaultSchedule
	cmd.Flags().StringVar(&start, "start", def.Start.String(), "first block start (HH:MM)")
	cmd.Flags().StringVar(&interval, "interval", def.Interval.String(), "block length")
	cmd.Flags().IntVar(&count, "count", def.Count, "number of blocks")
	cmd.Flags().StringVar(&check, "check", "", "validate a times string instead of generating one")
	return cmd
}
