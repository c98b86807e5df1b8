package main

import (
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/scoring"
	"github.com/mauv0809/drift-bracket/internal/seeding"
	"github.com/mauv0809/drift-bracket/internal/tournament"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// settingsFlags are the tournament settings a command can override.
type settingsFlags struct {
	name          string
	format        string
	size          int
	laps          int
	order         string
	procedure     string
	formula       string
	fullInclusion bool
	qualifying    bool
	battles       bool
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Tournament name")
	fs.StringVar(&f.format, "format", string(bracket.DoubleElimination), "STANDARD, DOUBLE_ELIMINATION, WILDCARD, BATTLE_TREE or DRIFT_WARS")
	fs.IntVar(&f.size, "size", 16, "Bracket size, a power of two")
	fs.IntVar(&f.laps, "laps", 2, "Qualifying laps per driver, 1 to 3")
	fs.StringVar(&f.order, "order", string(tournament.OrderDriver), "Qualifying run order, DRIVER or ROUND")
	fs.StringVar(&f.procedure, "procedure", string(seeding.Best), "Qualifying procedure, BEST or WAVES")
	fs.StringVar(&f.formula, "formula", string(scoring.Averaged), "Lap score formula, AVERAGED or CUMULATIVE")
	fs.BoolVar(&f.fullInclusion, "full-inclusion", false, "Size the bracket to fit every driver")
	fs.BoolVar(&f.qualifying, "qualifying", true, "Run a qualifying phase")
	fs.BoolVar(&f.battles, "battles", true, "Run bracket battles")
}

// apply overrides s with every flag set on the command line.
func (f *settingsFlags) apply(fs *pflag.FlagSet, s tournament.Settings) tournament.Settings {
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "name":
			s.Name = f.name
		case "format":
			s.Format = bracket.Format(f.format)
		case "size":
			s.BracketSize = f.size
		case "laps":
			s.QualifyingLaps = f.laps
		case "order":
			s.QualifyingOrder = tournament.QualifyingOrder(f.order)
		case "procedure":
			s.QualifyingProcedure = seeding.Procedure(f.procedure)
		case "formula":
			s.ScoreFormula = scoring.Formula(f.formula)
		case "full-inclusion":
			s.FullInclusion = f.fullInclusion
		case "qualifying":
			s.QualifyingEnabled = f.qualifying
		case "battles":
			s.BattlesEnabled = f.battles
		}
	})
	return s
}

var (
	createFlags settingsFlags
	updateFlags settingsFlags
)

func init() {
	createFlags.register(tournamentCreateCmd.Flags())
	updateFlags.register(tournamentSettingsCmd.Flags())
	tournamentCmd.AddCommand(tournamentCreateCmd, tournamentShowCmd, tournamentStartCmd, tournamentSettingsCmd)
	rootCmd.AddCommand(tournamentCmd)
}

var tournamentCmd = &cobra.Command{
	Use:   "tournament",
	Short: "Create and run tournaments",
}

var tournamentCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := createFlags.apply(cmd.Flags(), tournament.DefaultSettings(args[0]))
		t, err := app.engine.Create(cmd.Context(), settings)
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	},
}

var tournamentShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		t, err := app.engine.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	},
}

var tournamentStartCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Close registration and start qualifying or battles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		t, err := app.engine.Start(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	},
}

var tournamentSettingsCmd = &cobra.Command{
	Use:   "settings ID",
	Short: "Change the settings of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "tournament")
		if err != nil {
			return err
		}
		current, err := app.engine.Get(ctx, id)
		if err != nil {
			return err
		}
		t, err := app.engine.UpdateSettings(ctx, id, updateFlags.apply(cmd.Flags(), current.Settings))
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	},
}
