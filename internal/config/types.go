package config

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Turso     TursoConfig
	ProjectID string
	Log       LogConfig
	Rating    RatingConfig
	Slack     SlackConfig
	// WaveFractions overrides the share of the field promoted after each
	// qualifying round under the WAVES procedure.
	WaveFractions []float64
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// SlackConfig enables result notifications when both values are set.
type SlackConfig struct {
	Token   string
	Channel string
}

// Enabled reports whether notifications should be posted.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.Channel != ""
}

type LogConfig struct {
	Level  string
	Format string
}

type RatingConfig struct {
	KFactor float64
	Track   string
}
