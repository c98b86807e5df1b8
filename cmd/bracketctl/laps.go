package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	lapCmd.AddCommand(lapNextCmd, lapShowCmd, lapScoreCmd, lapPenaltyCmd)
	qualifyingCmd.AddCommand(qualifyingEndCmd)
	rootCmd.AddCommand(lapCmd, qualifyingCmd)
}

func parseScore(raw, what string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return v, nil
}

var lapCmd = &cobra.Command{
	Use:   "lap",
	Short: "Judge qualifying laps",
}

var lapNextCmd = &cobra.Command{
	Use:   "next TOURNAMENT",
	Short: "Show the next lap to judge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		lap, err := app.engine.NextLap(cmd.Context(), id)
		if err != nil {
			return err
		}
		if lap == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Every lap is scored")
			return nil
		}
		return printJSON(cmd, lap)
	},
}

var lapShowCmd = &cobra.Command{
	Use:   "show LAP",
	Short: "Show a lap with its scores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "lap")
		if err != nil {
			return err
		}
		lap, err := app.engine.Lap(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, lap)
	},
}

var lapScoreCmd = &cobra.Command{
	Use:   "score LAP JUDGE SCORE",
	Short: "Record the score of a judge for a lap",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "lap")
		if err != nil {
			return err
		}
		judge, err := driverID(ctx, args[1])
		if err != nil {
			return err
		}
		score, err := parseScore(args[2], "score")
		if err != nil {
			return err
		}
		lap, err := app.engine.ScoreLap(ctx, id, judge, score)
		if err != nil {
			return err
		}
		return printJSON(cmd, lap)
	},
}

var lapPenaltyCmd = &cobra.Command{
	Use:   "penalty LAP PENALTY",
	Short: "Set the penalty of a lap, negative for a deduction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "lap")
		if err != nil {
			return err
		}
		penalty, err := parseScore(args[1], "penalty")
		if err != nil {
			return err
		}
		lap, err := app.engine.SetLapPenalty(cmd.Context(), id, penalty)
		if err != nil {
			return err
		}
		return printJSON(cmd, lap)
	},
}

var qualifyingCmd = &cobra.Command{
	Use:   "qualifying",
	Short: "Control the qualifying phase",
}

var qualifyingEndCmd = &cobra.Command{
	Use:   "end TOURNAMENT",
	Short: "Close qualifying and seed the bracket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		t, err := app.engine.EndQualifying(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	},
}
