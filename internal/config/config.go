package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Auth
	SecretKey    string
	JWTExpiresIn time.Duration
	BcryptCost   int

	// AssemblyAI transcription
	AssemblyKey     string
	AssemblyBaseURL string
	PollInterval    int // seconds between transcript status polls

	// Summarization provider: "huggingface" or "gemini"
	SummaryProvider    string
	HuggingFaceToken   string
	HuggingFaceModel   string
	HuggingFaceBaseURL string
	GeminiAPIKey       string

	// Media tooling
	YtdlpPath  string
	FFmpegPath string
	MediaRoot  string
	MediaTTL   int // minutes before the janitor removes leftover audio files

	// SQLite
	DatabasePath string

	// Redis (rate limiting + asynq)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		SecretKey:  getEnv("SECRET_KEY", ""),
		BcryptCost: getEnvInt("BCRYPT_COST", 12),

		AssemblyKey:     getEnvAny("ASSEMBLY_KEY", "ASSEMBLYAI_API_KEY"),
		AssemblyBaseURL: getEnv("ASSEMBLY_BASE_URL", "https://api.assemblyai.com"),
		PollInterval:    getEnvInt("ASSEMBLY_POLL_INTERVAL", 3),

		SummaryProvider:    getEnv("SUMMARY_PROVIDER", ProviderHuggingFace),
		HuggingFaceToken:   getEnvAny("HUGGINGFACEHUB_API_TOKEN", "HUGGINGFACE_TOKEN"),
		HuggingFaceModel:   getEnv("HUGGINGFACE_MODEL", "facebook/bart-large-cnn"),
		HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),

		YtdlpPath:  getEnv("YTDLP_PATH", "yt-dlp"),
		FFmpegPath: getEnv("FFMPEG_PATH", ""),
		MediaRoot:  getEnv("MEDIA_ROOT", "./media"),
		MediaTTL:   getEnvInt("MEDIA_TTL_MINUTES", 60),

		DatabasePath: getEnv("DATABASE_PATH", "./blogcast.db"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields. Missing credentials must fail here,
	// at startup, not midway through a pipeline run.
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required - set it in .env file")
	}

	// A malformed duration would otherwise issue already-expired tokens
	jwtExpiresIn, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %v", err)
	}
	if jwtExpiresIn <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", jwtExpiresIn)
	}
	cfg.JWTExpiresIn = jwtExpiresIn

	if cfg.AssemblyKey == "" {
		return nil, fmt.Errorf("ASSEMBLY_KEY (or ASSEMBLYAI_API_KEY) is required - set it in .env file")
	}

	switch cfg.SummaryProvider {
	case ProviderHuggingFace:
		if cfg.HuggingFaceToken == "" {
			return nil, fmt.Errorf("HUGGINGFACEHUB_API_TOKEN is required when SUMMARY_PROVIDER=huggingface")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when SUMMARY_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown SUMMARY_PROVIDER %q (valid: huggingface, gemini)", cfg.SummaryProvider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAny returns the first non-empty value among the given keys.
func getEnvAny(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
