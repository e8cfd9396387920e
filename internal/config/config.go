package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/covid"
	"github.com/i474232898/covid-stats/internal/covid/providers"
	"github.com/i474232898/covid-stats/internal/store"
)

type AppConfig struct {
	// CSVFilePath is written by the fetcher and read by the dashboard.
	CSVFilePath string

	CovidAPIURL string

	// Raw fetch settings. Only the fetch command parses them, through Fetch.
	FetchStart       string
	FetchEnd         string
	FetchMaxRetries  string
	FetchHTTPTimeout string

	// Optional PostgreSQL mirror of fetched reports.
	DatabaseURL string

	Port     string
	LogLevel string
}

// FetchConfig holds the validated settings of a fetch run.
type FetchConfig struct {
	// Sampled range, both inclusive.
	Start time.Time
	End   time.Time

	// Outbound resilience. Zero retries and zero timeout reproduce a plain
	// one-shot GET per date.
	MaxRetries  int
	HTTPTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults. Settings
// used by a single command are validated by that command.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file found or error loading it: %v", err)
	}

	return &AppConfig{
		CSVFilePath:      getenvDefault("CSV_FILE_PATH", store.DefaultCSVPath),
		CovidAPIURL:      getenvDefault("COVID_API_URL", providers.DefaultCovidAPIURL),
		FetchStart:       getenvDefault("FETCH_START", common.FormatDay(covid.MinDate)),
		FetchEnd:         getenvDefault("FETCH_END", common.FormatDay(covid.MaxDate)),
		FetchMaxRetries:  getenvDefault("FETCH_MAX_RETRIES", "0"),
		FetchHTTPTimeout: getenvDefault("FETCH_HTTP_TIMEOUT", "0s"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getenvDefault("PORT", "8080"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
	}
}

// Fetch parses and validates the fetch settings.
func (c *AppConfig) Fetch() (*FetchConfig, error) {
	start, err := common.ParseDay(c.FetchStart)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid FETCH_START", goerr.V("value", c.FetchStart))
	}
	end, err := common.ParseDay(c.FetchEnd)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid FETCH_END", goerr.V("value", c.FetchEnd))
	}
	if end.Before(start) {
		return nil, goerr.New("FETCH_END must not be before FETCH_START",
			goerr.V("start", common.FormatDay(start)),
			goerr.V("end", common.FormatDay(end)))
	}

	retries, err := strconv.Atoi(c.FetchMaxRetries)
	if err != nil || retries < 0 {
		return nil, goerr.New("invalid FETCH_MAX_RETRIES", goerr.V("value", c.FetchMaxRetries))
	}

	timeout, err := time.ParseDuration(c.FetchHTTPTimeout)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid FETCH_HTTP_TIMEOUT", goerr.V("value", c.FetchHTTPTimeout))
	}

	return &FetchConfig{
		Start:       start,
		End:         end,
		MaxRetries:  retries,
		HTTPTimeout: timeout,
	}, nil
}

// Backoff returns the retry policy for the reports API.
func (c *FetchConfig) Backoff() providers.BackoffConfig {
	return providers.BackoffConfig{
		MaxRetries:      c.MaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
