package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Catalog location. When CatalogS3Bucket is set the catalog is read from
	// S3 instead of CatalogDir.
	CatalogDir        string
	CatalogS3Bucket   string
	CatalogS3Prefix   string
	DefaultPropertyID string

	DefaultLanguage      string
	FallbackMessagesJSON string

	// Polish providers
	PolishProvider    string
	PolishTimeout     time.Duration
	PolishMaxTokens   int
	PolishTemperature float64
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	BedrockModelID    string
	GeminiAPIKey      string
	GeminiModel       string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	PolishCacheTTL time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8787"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		CatalogDir:        getEnv("CATALOG_DIR", "data"),
		CatalogS3Bucket:   getEnv("CATALOG_S3_BUCKET", ""),
		CatalogS3Prefix:   getEnv("CATALOG_S3_PREFIX", ""),
		DefaultPropertyID: strings.TrimSpace(getEnv("DEFAULT_PROPERTY_ID", "LEONINA71")),

		DefaultLanguage:      getEnv("DEFAULT_LANGUAGE", "en"),
		FallbackMessagesJSON: getEnv("FALLBACK_MESSAGES_JSON", ""),

		PolishProvider:    strings.ToLower(strings.TrimSpace(getEnv("POLISH_PROVIDER", "auto"))),
		PolishTimeout:     getEnvAsDuration("POLISH_TIMEOUT", 8*time.Second),
		PolishMaxTokens:   getEnvAsInt("POLISH_MAX_TOKENS", 400),
		PolishTemperature: getEnvAsFloat("POLISH_TEMPERATURE", 0),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		PolishCacheTTL: getEnvAsDuration("POLISH_CACHE_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// FallbackMessages decodes FALLBACK_MESSAGES_JSON, a JSON object of
// language code to message. An empty value yields a nil map.
func (c *Config) FallbackMessages() (map[string]string, error) {
	raw := strings.TrimSpace(c.FallbackMessagesJSON)
	if raw == "" {
		return nil, nil
	}
	var messages map[string]string
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("config: decode FALLBACK_MESSAGES_JSON: %w", err)
	}
	return messages, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma-separated variable, dropping blank items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
