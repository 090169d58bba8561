package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"backend/models"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds everything read from the environment. It is built once at
// startup and passed by reference into services; nothing outside this package
// touches os.Getenv.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string

	JWTSecret string

	AnthropicAPIKey string
	AnthropicModel  string

	SightengineUser   string
	SightengineSecret string
	AllowUnmoderated  bool

	USDAAPIKey string

	AnalyzePerMinute float64
	AnalyzeBurst     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	return &Config{
		Port:              envOr("PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            envOr("DB_PORT", "5432"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    os.Getenv("ANTHROPIC_MODEL"),
		SightengineUser:   os.Getenv("SIGHTENGINE_API_USER"),
		SightengineSecret: os.Getenv("SIGHTENGINE_API_SECRET"),
		AllowUnmoderated:  os.Getenv("ALLOW_UNMODERATED") == "true",
		USDAAPIKey:        os.Getenv("USDA_API_KEY"),
		AnalyzePerMinute:  envFloatOr("ANALYZE_PER_MINUTE", 6),
		AnalyzeBurst:      envIntOr("ANALYZE_BURST", 3),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// InitDB opens the Postgres connection for the preference store and runs the
// migrations.
func InitDB(cfg *Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

// InitRedis connects the optional nutrition cache. Returns nil when no
// address is configured, which disables caching.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}
