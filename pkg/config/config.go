package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	DeepLinkScheme          string
	PushLocale              string
	BadgeWindowDays         int
	InboxPageSize           int
	WatchChangeStreams      bool
}

// Load reads configuration from the environment, after loading .env when present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "reelnote"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		DeepLinkScheme:          getEnv("DEEP_LINK_SCHEME", "reelnote"),
		PushLocale:              getEnv("PUSH_LOCALE", "en"),
		BadgeWindowDays:         getEnvInt("BADGE_WINDOW_DAYS", 30),
		InboxPageSize:           getEnvInt("INBOX_PAGE_SIZE", 20),
		WatchChangeStreams:      getEnvBool("WATCH_CHANGE_STREAMS", false),
	}
}

// BadgeWindow is the look-back period of the unread badge
func (c *Config) BadgeWindow() time.Duration {
	return time.Duration(c.BadgeWindowDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
