package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// UpdateMode selects how a combined issue update treats its sub-operations.
type UpdateMode string

const (
	// UpdateModeIndependent applies every authorised sub-operation on its own.
	UpdateModeIndependent UpdateMode = "independent"
	// UpdateModeStrict authorises everything first and commits all writes in one transaction.
	UpdateModeStrict UpdateMode = "strict"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	LogFile    string

	DBDriver   string
	MySQLDSN   string
	SQLitePath string
	DebugSQL   bool

	RedisAddr        string
	RedisDB          int
	RedisPass        string
	IdentityCacheTTL time.Duration

	SessionSecret    string
	SessionPublicKey string
	SessionIssuer    string

	UpdateMode           UpdateMode
	AnnouncementFeedSize int

	UploadBackend   string
	UploadDir       string
	UploadPublicURL string
	UploadEndpoint  string
	UploadAPIKey    string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogFile:    os.Getenv("LOG_FILE"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/campusdesk?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath: getEnv("SQLITE_PATH", "campusdesk.db"),
		DebugSQL:   getEnvBool("DEBUG_SQL", false),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		IdentityCacheTTL: getEnvDuration("IDENTITY_CACHE_TTL", time.Minute),

		SessionSecret:    os.Getenv("SESSION_JWT_SECRET"),
		SessionPublicKey: os.Getenv("SESSION_JWT_PUBLIC_KEY"),
		SessionIssuer:    os.Getenv("SESSION_ISSUER"),

		UpdateMode:           parseUpdateMode(os.Getenv("UPDATE_MODE")),
		AnnouncementFeedSize: getEnvInt("ANNOUNCEMENT_FEED_SIZE", 5),

		UploadBackend:   strings.ToLower(getEnv("UPLOAD_BACKEND", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadPublicURL: getEnv("UPLOAD_PUBLIC_URL", "http://localhost:8080/files"),
		UploadEndpoint:  os.Getenv("UPLOAD_ENDPOINT"),
		UploadAPIKey:    os.Getenv("UPLOAD_API_KEY"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

func parseUpdateMode(v string) UpdateMode {
	switch UpdateMode(strings.ToLower(strings.TrimSpace(v))) {
	case UpdateModeStrict:
		return UpdateModeStrict
	case UpdateModeIndependent, "":
		return UpdateModeIndependent
	default:
		log.Printf("config: unknown UPDATE_MODE %q, using %s", v, UpdateModeIndependent)
		return UpdateModeIndependent
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
