package main

import (
	"github.com/spf13/cobra"
)

var driverAvatar string

func init() {
	driverAddCmd.Flags().StringVar(&driverAvatar, "avatar", "", "URL of the driver's avatar")
	driverCmd.AddCommand(driverAddCmd, driverListCmd, driverFindCmd)
	rootCmd.AddCommand(driverCmd)
}

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Manage the driver directory",
}

var driverAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := app.drivers.AddDriver(cmd.Context(), args[0], driverAvatar)
		if err != nil {
			return err
		}
		return printJSON(cmd, d)
	},
}

var driverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		drivers, err := app.drivers.All(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, drivers)
	},
}

var driverFindCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Suggest registered drivers with a similar name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suggestions, err := app.drivers.Suggest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, suggestions)
	},
}
