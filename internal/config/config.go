package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Primary store
	StoreDriver     string
	DatabaseURL     string
	SQLitePath      string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DynamoTable     string
	AWSRegion       string

	// Archive
	ArchiveEnabled    bool
	ArchiveDriver     string
	ArchiveBucket     string
	ArchiveDir        string
	ArchiveLinkColumn bool
	SupabaseURL       string
	SupabaseKey       string

	// Redis (optional)
	RedisURL string

	// Extraction tool
	StagingDir     string
	YTDLPPath      string
	ToolTimeout    time.Duration
	MetadataSource string
	CaptionCleanup bool // drop the VTT header and rolled-forward cue lines

	Timezone        string
	SubmitRateLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "9090"),
		Env:               getEnvOrDefault("ENV", "development"),
		StoreDriver:       strings.ToLower(getEnvOrDefault("STORE_DRIVER", "sqlite")),
		SQLitePath:        getEnvOrDefault("SQLITE_PATH", "./data/subtitles.db"),
		MongoDatabase:     getEnvOrDefault("MONGO_DATABASE", "subtitles"),
		MongoCollection:   getEnvOrDefault("MONGO_COLLECTION", "subtitle"),
		DynamoTable:       getEnvOrDefault("DYNAMO_TABLE", "Subtitle"),
		AWSRegion:         getEnvOrDefault("AWS_REGION", "ap-northeast-2"),
		ArchiveEnabled:    getEnvAsBoolOrDefault("ARCHIVE_ENABLED", false),
		ArchiveDriver:     strings.ToLower(getEnvOrDefault("ARCHIVE_DRIVER", "local")),
		ArchiveBucket:     getEnvOrDefault("ARCHIVE_BUCKET", "subtitle-collection"),
		ArchiveDir:        getEnvOrDefault("ARCHIVE_DIR", "./data/archive"),
		ArchiveLinkColumn: getEnvAsBoolOrDefault("ARCHIVE_LINK_COLUMN", false),
		SupabaseURL:       getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:       getEnvOrDefault("SUPABASE_KEY", ""),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		StagingDir:        getEnvOrDefault("STAGING_DIR", "/tmp/subtitle/vtt"),
		YTDLPPath:         getEnvOrDefault("YTDLP_PATH", "yt-dlp"),
		ToolTimeout:       getEnvAsDurationOrDefault("TOOL_TIMEOUT", 2*time.Minute),
		MetadataSource:    strings.ToLower(getEnvOrDefault("METADATA_SOURCE", "ytdlp")),
		CaptionCleanup:    getEnvAsBoolOrDefault("CAPTION_CLEANUP", false),
		Timezone:          getEnvOrDefault("TIMEZONE", "Asia/Seoul"),
		SubmitRateLimit:   getEnvAsIntOrDefault("SUBMIT_RATE_LIMIT", 10),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	// Connection strings are required only by the driver that uses them.
	switch cfg.StoreDriver {
	case "postgres":
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case "mongo":
		cfg.MongoURI = mustGetEnv("MONGO_URI")
	}

	return cfg
}

// Validate checks driver names and the settings each selected backend needs.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "mongo", "sqlite", "dynamodb":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.ArchiveEnabled {
		switch c.ArchiveDriver {
		case "local", "s3":
		case "supabase":
			if c.SupabaseURL == "" || c.SupabaseKey == "" {
				return fmt.Errorf("ARCHIVE_DRIVER=supabase requires SUPABASE_URL and SUPABASE_KEY")
			}
		default:
			return fmt.Errorf("unknown ARCHIVE_DRIVER %q", c.ArchiveDriver)
		}
	}

	switch c.MetadataSource {
	case "ytdlp", "innertube":
	default:
		return fmt.Errorf("unknown METADATA_SOURCE %q", c.MetadataSource)
	}

	if c.ToolTimeout <= 0 {
		return fmt.Errorf("TOOL_TIMEOUT must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, used for record timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
