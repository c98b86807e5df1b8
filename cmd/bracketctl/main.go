package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/config"
	"github.com/mauv0809/drift-bracket/internal/database"
	"github.com/mauv0809/drift-bracket/internal/directory"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	slacknotifier "github.com/mauv0809/drift-bracket/internal/notifier/slack"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
	"github.com/mauv0809/drift-bracket/internal/tournament"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// application holds everything a command needs.
type application struct {
	db        *sql.DB
	engine    tournament.Service
	drivers   directory.DriverStore
	metrics   metrics.MetricsStore
	registry  *prometheus.Registry
	publisher pubsub.PubSubClient
}

var (
	app         *application
	dumpMetrics bool
)

var rootCmd = &cobra.Command{
	Use:   "bracketctl",
	Short: "Run drift tournaments from the command line",
	Long: `bracketctl manages drift tournaments: drivers and judges, qualifying
laps, bracket battles, final standings and driver ratings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(config.Load())
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		defer app.close()
		if dumpMetrics {
			return metrics.WriteText(cmd.ErrOrStderr(), app.registry)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "dump-metrics", false, "Print the metrics of this run to stderr when done")
}

func setup(cfg config.Config) (*application, error) {
	configureLogging(cfg.Log)

	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	publisher, err := pubsub.New(cfg.ProjectID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize pubsub: %w", err)
	}

	registry := prometheus.NewRegistry()
	metricsStore := metrics.New(db)
	metricsSvc := metrics.NewService(metricsStore, registry)
	drivers := directory.New(db)

	opts := []tournament.Option{
		tournament.WithMetrics(metricsSvc),
		tournament.WithPublisher(publisher),
		tournament.WithDirectory(drivers),
		tournament.WithRating(cfg.Rating.Track, cfg.Rating.KFactor),
		tournament.WithWaveFractions(cfg.WaveFractions),
	}
	if cfg.Slack.Enabled() {
		log.Info("Posting results to Slack", "channel", cfg.Slack.Channel)
		opts = append(opts, tournament.WithNotifier(slacknotifier.NewNotifier(cfg.Slack.Token, cfg.Slack.Channel, metricsSvc)))
	}
	engine := tournament.New(tournament.NewStore(db), opts...)

	return &application{
		db:        db,
		engine:    engine,
		drivers:   drivers,
		metrics:   metricsStore,
		registry:  registry,
		publisher: publisher,
	}, nil
}

func (a *application) close() {
	if err := a.publisher.Close(); err != nil {
		log.Error("Failed to close pubsub client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		log.Error("Failed to close database", "error", err)
	}
}

func configureLogging(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(log.JSONFormatter)
	}
	if cfg.Level == "" {
		return
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn("Unknown log level, keeping the default", "level", cfg.Level)
		return
	}
	log.SetLevel(level)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
