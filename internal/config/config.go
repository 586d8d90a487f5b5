package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigins are the local development origins the frontend is served from.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5000",
	"http://localhost:9000",
	"http://127.0.0.1:9000",
	"http://127.0.0.1:5000",
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	Environment   string
	UsersFile     string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	GeminiAPIKey  string
	GeminiModel   string
	CORSOrigins   []string
	UploadDir     string
	ScrapeTimeout time.Duration
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory, when present, is loaded first;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "9002"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		UsersFile:     getEnv("USERS_FILE", "data/users.json"),
		MySQLDSN:      os.Getenv("MYSQL_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", DefaultCORSOrigins),
		UploadDir:     getEnv("UPLOAD_DIR", os.TempDir()),
		ScrapeTimeout: time.Duration(getEnvInt("SCRAPE_TIMEOUT_SECONDS", 10)) * time.Second,
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
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

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
