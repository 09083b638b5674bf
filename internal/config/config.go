package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr string
	LogLevel string
	APIKey   string

	LineChannelSecret      string
	LineChannelAccessToken string
	LineAPIBaseURL         string

	DataBackend           string
	GoogleCredentialsJSON string
	SpreadsheetID         string
	SpreadsheetName       string
	DatabaseURL           string
	Sheets                domain.SheetNames

	RedisURL string
	StateTTL time.Duration

	NatsURL     string
	NatsSubject string
	NatsTimeout time.Duration

	WhatsAppEnabled   bool
	WhatsAppStorePath string

	ReplyOnUnroutable   bool
	PlaceholderImageURL string
}

func NewConfig() *Config {
	// Load .env if present
	_ = godotenv.Load()

	defaults := domain.DefaultSheetNames()

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIKey:   os.Getenv("API_KEY"),

		LineChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineAPIBaseURL:         strings.TrimRight(getEnv("LINE_API_BASE_URL", "https://api.line.me"), "/"),

		DataBackend:           strings.ToLower(strings.TrimSpace(getEnv("DATA_BACKEND", BackendSheets))),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_CONTENT"),
		SpreadsheetID:         os.Getenv("SPREADSHEET_ID"),
		SpreadsheetName:       getEnv("SPREADSHEET_NAME", "Shoushou Fitness Club"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		Sheets: domain.SheetNames{
			Members:    getEnv("SHEET_MEMBERS", defaults.Members),
			FAQ:        getEnv("SHEET_FAQ", defaults.FAQ),
			Facilities: getEnv("SHEET_FACILITIES", defaults.Facilities),
			Courses:    getEnv("SHEET_COURSES", defaults.Courses),
			Coaches:    getEnv("SHEET_COACHES", defaults.Coaches),
			FitnessLog: getEnv("SHEET_FITNESS_LOG", defaults.FitnessLog),
		},

		RedisURL: os.Getenv("REDIS_URL"),
		// 0 keeps an unanswered expectation until the user's next message.
		StateTTL: getEnvAsDuration("STATE_TTL", 0),

		NatsURL:     os.Getenv("NATS_URL"),
		NatsSubject: getEnv("NATS_SUBJECT", "clubbot.route"),
		NatsTimeout: getEnvAsDuration("NATS_TIMEOUT", 10*time.Second),

		WhatsAppEnabled:   getEnvAsBool("WHATSAPP_ENABLED", false),
		WhatsAppStorePath: getEnv("WHATSAPP_STORE_PATH", "whatsmeow.db"),

		ReplyOnUnroutable:   getEnvAsBool("REPLY_ON_UNROUTABLE", false),
		PlaceholderImageURL: os.Getenv("PLACEHOLDER_IMAGE_URL"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.LineChannelSecret == "" {
		missing = append(missing, "LINE_CHANNEL_SECRET")
	}
	if c.LineChannelAccessToken == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
	}
	if err := c.ValidateBackend(); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateBackend checks only the data backend settings.
func (c *Config) ValidateBackend() error {
	switch c.DataBackend {
	case BackendSheets:
		if c.GoogleCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_CONTENT is required for the sheets backend")
		}
		if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
			return fmt.Errorf("SPREADSHEET_ID or SPREADSHEET_NAME is required for the sheets backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
