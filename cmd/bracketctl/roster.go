package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var judgePoints float64

func init() {
	rosterCmd.AddCommand(rosterAddCmd, rosterRemoveCmd, rosterReorderCmd, rosterListCmd)
	judgeAddCmd.Flags().Float64Var(&judgePoints, "points", 0, "Advisory points of the judge")
	judgeCmd.AddCommand(judgeAddCmd, judgeRemoveCmd, judgeListCmd)
	rootCmd.AddCommand(rosterCmd, judgeCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the drivers entered in a tournament",
}

// rosterEdit builds a command that applies one roster operation to a list of
// drivers.
func rosterEdit(use, short string, edit func(cmd *cobra.Command, id int64, drivers []int64) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tournament")
			if err != nil {
				return err
			}
			drivers, err := driverIDs(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			out, err := edit(cmd, id, drivers)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
}

var rosterAddCmd = rosterEdit("add TOURNAMENT DRIVER...", "Enter drivers in a tournament",
	func(cmd *cobra.Command, id int64, drivers []int64) (any, error) {
		return app.engine.AddDrivers(cmd.Context(), id, drivers)
	})

var rosterRemoveCmd = rosterEdit("remove TOURNAMENT DRIVER...", "Withdraw drivers from a tournament",
	func(cmd *cobra.Command, id int64, drivers []int64) (any, error) {
		return app.engine.RemoveDrivers(cmd.Context(), id, drivers)
	})

var rosterReorderCmd = rosterEdit("reorder TOURNAMENT DRIVER...", "Set the running order of every entered driver",
	func(cmd *cobra.Command, id int64, drivers []int64) (any, error) {
		return app.engine.ReorderDrivers(cmd.Context(), id, drivers)
	})

var rosterListCmd = &cobra.Command{
	Use:   "list TOURNAMENT",
	Short: "List entered drivers in running order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		entries, err := app.engine.Entries(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, entries)
	},
}

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Manage the judges of a tournament",
}

// judgeArgs parses a tournament id and a driver reference.
func judgeArgs(cmd *cobra.Command, args []string) (int64, int64, error) {
	id, err := parseID(args[0], "tournament")
	if err != nil {
		return 0, 0, err
	}
	driver, err := driverID(cmd.Context(), args[1])
	if err != nil {
		return 0, 0, err
	}
	return id, driver, nil
}

var judgeAddCmd = &cobra.Command{
	Use:   "add TOURNAMENT DRIVER",
	Short: "Add a judge to a tournament",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, driver, err := judgeArgs(cmd, args)
		if err != nil {
			return err
		}
		j, err := app.engine.AddJudge(cmd.Context(), id, driver, judgePoints)
		if err != nil {
			return err
		}
		return printJSON(cmd, j)
	},
}

var judgeRemoveCmd = &cobra.Command{
	Use:   "remove TOURNAMENT DRIVER",
	Short: "Remove a judge from a tournament",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, driver, err := judgeArgs(cmd, args)
		if err != nil {
			return err
		}
		if err := app.engine.RemoveJudge(cmd.Context(), id, driver); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed judge %d from tournament %d\n", driver, id)
		return nil
	},
}

var judgeListCmd = &cobra.Command{
	Use:   "list TOURNAMENT",
	Short: "List the judges of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		judges, err := app.engine.Judges(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, judges)
	},
}
