package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ranking snapshot policies accepted in RANKING_POLICY
const (
	RankingPolicyAppendOnce = "append-once"
	RankingPolicyOverwrite  = "overwrite"
)

type Config struct {
	Environment string
	Verbose     bool
	DBPath      string
	// Turso / libSQL (takes precedence over DBPath when set)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Henley Passport Index API
	APIBaseURL   string
	HTTPTimeout  time.Duration
	FetchRetries int
	RequestDelay time.Duration
	// Ingestion
	RankingPolicy string
	Schedule      string
	Timezone      string
	// Export
	ExportDir string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Verbose:           getEnvBool("VERBOSE", false),
		DBPath:            getEnv("DB_PATH", "data/passportindex.db"),
		TursoDatabaseURL:  getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:    getEnv("TURSO_AUTH_TOKEN", ""),
		APIBaseURL:        getEnv("API_BASE_URL", "https://api.henleypassportindex.com/api/v3"),
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		FetchRetries:      getEnvInt("FETCH_RETRIES", 3),
		RequestDelay:      getEnvDuration("REQUEST_DELAY", 500*time.Millisecond),
		RankingPolicy:     getEnv("RANKING_POLICY", RankingPolicyAppendOnce),
		Schedule:          getEnv("SCHEDULE", "0 3 * * *"),
		Timezone:          getEnv("TIMEZONE", "UTC"),
		ExportDir:         getEnv("EXPORT_DIR", "data/exports"),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
	}
}

// Validate checks the values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	switch c.RankingPolicy {
	case RankingPolicyAppendOnce, RankingPolicyOverwrite:
	default:
		return fmt.Errorf("invalid RANKING_POLICY %q (want %q or %q)", c.RankingPolicy, RankingPolicyAppendOnce, RankingPolicyOverwrite)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative (got %d)", c.FetchRetries)
	}
	return nil
}

// Location resolves Timezone, used to decide the calendar date of an observation
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// R2Configured reports whether every R2 setting needed for uploads is present
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARNING] %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[WARNING] %s=%q is not a duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
