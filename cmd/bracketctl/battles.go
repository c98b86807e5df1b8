package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var oneMoreTime bool

func init() {
	battleVoteCmd.Flags().BoolVar(&oneMoreTime, "omt", false, "Vote for one more time instead of a winner")
	battleCmd.AddCommand(battleNextCmd, battleShowCmd, battleVoteCmd, battleResetCmd, battleListCmd)
	rootCmd.AddCommand(battleCmd)
}

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Judge bracket battles",
}

var battleNextCmd = &cobra.Command{
	Use:   "next TOURNAMENT",
	Short: "Show the next battle to judge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		b, err := app.engine.NextBattle(cmd.Context(), id)
		if err != nil {
			return err
		}
		if b == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No battle is ready")
			return nil
		}
		return printJSON(cmd, b)
	},
}

var battleShowCmd = &cobra.Command{
	Use:   "show BATTLE",
	Short: "Show a battle with its votes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "battle")
		if err != nil {
			return err
		}
		b, err := app.engine.Battle(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, b)
	},
}

var battleVoteCmd = &cobra.Command{
	Use:   "vote BATTLE JUDGE [WINNER]",
	Short: "Cast the vote of a judge",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "battle")
		if err != nil {
			return err
		}
		judge, err := driverID(ctx, args[1])
		if err != nil {
			return err
		}
		var winner int64
		switch {
		case len(args) == 3 && !oneMoreTime:
			if winner, err = driverID(ctx, args[2]); err != nil {
				return err
			}
		case len(args) == 2 && oneMoreTime:
		default:
			return fmt.Errorf("pass either a winner or --omt")
		}
		res, err := app.engine.Vote(ctx, id, judge, winner, oneMoreTime)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var battleResetCmd = &cobra.Command{
	Use:   "reset BATTLE",
	Short: "Clear every vote of an undecided battle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "battle")
		if err != nil {
			return err
		}
		b, err := app.engine.ResetVotes(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, b)
	},
}

var battleListCmd = &cobra.Command{
	Use:   "list TOURNAMENT",
	Short: "List every battle of the bracket in play order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		battles, err := app.engine.Bracket(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, battles)
	},
}
