package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string

	PollinationsKey          string
	PollinationsBaseURL      string
	PollinationsMaxURLLength int

	GeminiAPIKey      string
	GeminiBaseURL     string
	GeminiAPIVersion  string
	GeminiFlashModel  string
	GeminiImagenModel string
	GeminiUltraModel  string
	GeminiTierTimeout time.Duration

	WebAddr  string
	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
}

// Load reads the process environment. Every credential is optional here;
// callers that need one check for it (see RequireTelegram).
func Load() (Config, error) {
	cfg := Config{
		PollinationsBaseURL:      strings.TrimSpace(getEnv("POLLINATIONS_BASE_URL", "https://gen.pollinations.ai/image/")),
		PollinationsMaxURLLength: getEnvInt("POLLINATIONS_MAX_URL_LENGTH", 2000),
		GeminiBaseURL:            strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:         strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		GeminiFlashModel:         strings.TrimSpace(getEnv("GEMINI_FLASH_MODEL", "gemini-2.5-flash-image")),
		GeminiImagenModel:        strings.TrimSpace(getEnv("GEMINI_IMAGEN_MODEL", "imagen-3.0-generate-001")),
		GeminiUltraModel:         strings.TrimSpace(getEnv("GEMINI_IMAGEN_ULTRA_MODEL", "imagen-4.0-generate-001")),
		GeminiTierTimeout:        time.Duration(getEnvInt("GEMINI_TIER_TIMEOUT_SECONDS", 90)) * time.Second,
		WebAddr:                  strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:                 strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:                    getEnvBool("DEBUG", false),
		PreferIPv4:               getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:            getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:           time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 300)) * time.Second,
		HTTPTimeout:              time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.PollinationsKey = strings.TrimSpace(os.Getenv("POLLINATIONS_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")))

	if !strings.HasPrefix(cfg.PollinationsBaseURL, "http://") && !strings.HasPrefix(cfg.PollinationsBaseURL, "https://") {
		return Config{}, errors.New("POLLINATIONS_BASE_URL must be an http(s) URL")
	}

	if cfg.PollinationsMaxURLLength < 1 {
		cfg.PollinationsMaxURLLength = 2000
	}
	if cfg.GeminiTierTimeout <= 0 {
		cfg.GeminiTierTimeout = 90 * time.Second
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 300 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
