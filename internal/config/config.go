package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	AppTitle            string
	SessionSecret       string
	DatabaseURL         string // postgres DSN, or sqlite://<path> for local runs
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	GoogleCredentialsFile string // service account key file for the Sheets/Drive report export
	GoogleCredentialsJSON string // same key inline; wins over the file when both are set
	ReportShareEmail      string // account that gets writer access to every exported report
	ReportCron            string // optional schedule for automatic report export

	InvestingLockTimeout time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_TITLE", "Charity fund")
	viper.SetDefault("DATABASE_URL", "sqlite://charity.db")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("INVESTING_LOCK_TIMEOUT", "5s")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                    env,
		Port:                   viper.GetString("PORT"),
		AppTitle:               viper.GetString("APP_TITLE"),
		SessionSecret:          viper.GetString("SESSION_SECRET"),
		DatabaseURL:            dbURL,
		RedisURL:               viper.GetString("REDIS_URL"),
		FrontendURLEndsWith:    viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:            viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:      strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:         viper.GetString("HEALTH_ADMIN_KEY"),
		FirstSuperuserEmail:    viper.GetString("FIRST_SUPERUSER_EMAIL"),
		FirstSuperuserPassword: viper.GetString("FIRST_SUPERUSER_PASSWORD"),
		GoogleCredentialsFile:  viper.GetString("GOOGLE_CREDENTIALS_FILE"),
		GoogleCredentialsJSON:  viper.GetString("GOOGLE_CREDENTIALS_JSON"),
		ReportShareEmail:       strings.TrimSpace(viper.GetString("REPORT_SHARE_EMAIL")),
		ReportCron:             strings.TrimSpace(viper.GetString("REPORT_CRON")),
		InvestingLockTimeout:   viper.GetDuration("INVESTING_LOCK_TIMEOUT"),
	}, nil
}

// GoogleCredentials returns the service account key, preferring the inline value.
// A nil slice means the report export is not configured.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	if c.GoogleCredentialsFile == "" {
		return nil, nil
	}
	return os.ReadFile(c.GoogleCredentialsFile)
}
