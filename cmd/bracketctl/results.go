package main

import (
	"github.com/spf13/cobra"
)

func init() {
	ratingCmd.AddCommand(ratingShowCmd, ratingHistoryCmd)
	rootCmd.AddCommand(standingsCmd, ratingCmd, metricsCmd)
}

var standingsCmd = &cobra.Command{
	Use:   "standings TOURNAMENT",
	Short: "Show the finishing order of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		rows, err := app.engine.Standings(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, rows)
	},
}

var ratingCmd = &cobra.Command{
	Use:   "rating",
	Short: "Show driver ratings",
}

var ratingShowCmd = &cobra.Command{
	Use:   "show DRIVER",
	Short: "Show the current rating of a driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := driverID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		r, err := app.engine.Rating(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

var ratingHistoryCmd = &cobra.Command{
	Use:   "history DRIVER",
	Short: "List the rating changes of a driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := driverID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		history, err := app.engine.RatingHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, history)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the persisted engine counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		totals, err := app.metrics.GetAll()
		if err != nil {
			return err
		}
		return printJSON(cmd, totals)
	},
}
