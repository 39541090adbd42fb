package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters, read from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	OpenAlexBaseURL string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	DBLPBaseURL     string `envconfig:"DBLP_BASE_URL" default:"https://dblp.org"`

	// ContactEmail goes into the User-Agent of every outbound catalog
	// request. OpenAlex routes requests carrying a mailto into its polite pool.
	ContactEmail string `envconfig:"CONTACT_EMAIL" required:"true"`
	ClientTool   string `envconfig:"CLIENT_TOOL" default:"pubtrack-enricher"`

	// Directory with the local ranking reference files (Scimago/CORE/DGRSDT)
	// and their metadata.json manifest.
	RankingsDir string `envconfig:"RANKINGS_DIR" default:"Rankings"`

	RequestTimeoutSeconds int `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"10"`
	RetryMax              int `envconfig:"RETRY_MAX" default:"3"`
	RetryWaitSeconds      int `envconfig:"RETRY_WAIT_SECONDS" default:"2"`

	// Pause between two researchers in a batch, to go easy on DBLP.
	ResearcherDelaySeconds int `envconfig:"RESEARCHER_DELAY_SECONDS" default:"1"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// UserAgent returns the descriptive user-agent string for outbound requests.
func (c *Config) UserAgent() string {
	return fmt.Sprintf("%s (mailto:%s)", c.ClientTool, c.ContactEmail)
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryWait returns the default wait between retries when the remote service
// did not declare one.
func (c *Config) RetryWait() time.Duration {
	return time.Duration(c.RetryWaitSeconds) * time.Second
}

// ResearcherDelay returns the pause inserted between successive researchers.
func (c *Config) ResearcherDelay() time.Duration {
	return time.Duration(c.ResearcherDelaySeconds) * time.Second
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
