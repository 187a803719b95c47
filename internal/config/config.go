package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendSheets   = "sheets"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendSupabase, BackendSheets}

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Data source
	DataBackend   string
	SQLiteDBPath  string
	SupabaseDBURL string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleReportSheet       string

	// Cache
	CacheTTL  time.Duration
	CacheSize int

	// Worker
	SnapshotInterval time.Duration

	// Presentation
	DefaultLocale        string
	DonutOuterRadius     float64
	DonutInnerRadius     float64
	DonutGapDegrees      float64
	DonutSelectionOffset float64
	DonutSelectionScale  float64

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DataBackend:   getEnv("DATA_BACKEND", BackendMemory),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/flousi.db"),
		SupabaseDBURL: getEnv("SUPABASE_DB_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "flousi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "analytics_snapshots"),

		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTransactionsSheet: getEnv("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),
		GoogleReportSheet:       getEnv("GOOGLE_REPORT_SHEET", "Analytics"),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 200),

		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", time.Hour),

		DefaultLocale:        getEnv("DEFAULT_LOCALE", "fr"),
		DonutOuterRadius:     getEnvFloat("DONUT_OUTER_RADIUS", 90),
		DonutInnerRadius:     getEnvFloat("DONUT_INNER_RADIUS", 60),
		DonutGapDegrees:      getEnvFloat("DONUT_GAP_DEGREES", 3),
		DonutSelectionOffset: getEnvFloat("DONUT_SELECTION_OFFSET", 6),
		DonutSelectionScale:  getEnvFloat("DONUT_SELECTION_SCALE", 1.05),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendSupabase:
		if c.SupabaseDBURL == "" {
			errors = append(errors, "SUPABASE_DB_URL is required when using supabase backend")
		} else if u, err := url.Parse(c.SupabaseDBURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, "invalid SUPABASE_DB_URL: must be a postgres:// or postgresql:// URL")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleTransactionsSheet == "" {
			errors = append(errors, "Google transactions sheet name is required when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.SnapshotInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid snapshot interval %v: must be at least 1 minute", c.SnapshotInterval))
	} else if c.SnapshotInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid snapshot interval %v: must be at most 24 hours", c.SnapshotInterval))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.DonutOuterRadius <= 0 {
		errors = append(errors, fmt.Sprintf("invalid donut outer radius %v: must be positive", c.DonutOuterRadius))
	}
	if c.DonutInnerRadius < 0 || c.DonutInnerRadius >= c.DonutOuterRadius {
		errors = append(errors, fmt.Sprintf("invalid donut inner radius %v: must be between 0 and the outer radius", c.DonutInnerRadius))
	}
	if c.DonutGapDegrees < 0 || c.DonutGapDegrees >= 360 {
		errors = append(errors, fmt.Sprintf("invalid donut gap %v: must be in [0, 360)", c.DonutGapDegrees))
	}
	if c.DonutSelectionOffset < 0 {
		errors = append(errors, fmt.Sprintf("invalid donut selection offset %v: must not be negative", c.DonutSelectionOffset))
	}
	if c.DonutSelectionScale < 1 {
		errors = append(errors, fmt.Sprintf("invalid donut selection scale %v: must be at least 1", c.DonutSelectionScale))
	}

	switch strings.ToLower(c.DefaultLocale) {
	case "tn", "fr", "en":
	default:
		errors = append(errors, fmt.Sprintf("invalid default locale '%s': must be one of [tn fr en]", c.DefaultLocale))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
