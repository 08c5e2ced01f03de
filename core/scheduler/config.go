package scheduler

// Config holds configuration for the task scheduler.
type Config struct {
	// Enabled starts the scheduler with the server.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Timezone is the IANA location cron expressions are evaluated in.
	Timezone string `mapstructure:"timezone" default:"UTC"`
}
