package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "CATALOG_DIR", "CATALOG_S3_BUCKET",
		"DEFAULT_PROPERTY_ID", "DEFAULT_LANGUAGE", "POLISH_PROVIDER", "POLISH_TIMEOUT",
		"OPENAI_API_KEY", "OPENAI_MODEL", "REDIS_ADDR", "POLISH_CACHE_TTL", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8787" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json log format, got %s", cfg.LogFormat)
	}
	if cfg.CatalogDir != "data" {
		t.Fatalf("expected default catalog dir, got %s", cfg.CatalogDir)
	}
	if cfg.DefaultPropertyID != "LEONINA71" {
		t.Fatalf("expected default property, got %s", cfg.DefaultPropertyID)
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("expected default language en, got %s", cfg.DefaultLanguage)
	}
	if cfg.PolishProvider != "auto" {
		t.Fatalf("expected auto polish provider, got %s", cfg.PolishProvider)
	}
	if cfg.PolishTemperature != 0 {
		t.Fatalf("expected provider default temperature, got %v", cfg.PolishTemperature)
	}
	if cfg.PolishTimeout != 8*time.Second {
		t.Fatalf("expected 8s polish timeout, got %s", cfg.PolishTimeout)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default openai model, got %s", cfg.OpenAIModel)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.PolishCacheTTL != 24*time.Hour {
		t.Fatalf("expected 24h cache ttl, got %s", cfg.PolishCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors, got %v", cfg.CORSAllowedOrigins)
	}
	messages, err := cfg.FallbackMessages()
	if err != nil || messages != nil {
		t.Fatalf("expected no fallback messages, got %v (%v)", messages, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("CATALOG_S3_BUCKET", "guest-catalogs")
	t.Setenv("CATALOG_S3_PREFIX", "rome/")
	t.Setenv("DEFAULT_PROPERTY_ID", " TRASTEVERE5 ")
	t.Setenv("POLISH_PROVIDER", " Bedrock ")
	t.Setenv("POLISH_TIMEOUT", "3s")
	t.Setenv("POLISH_TEMPERATURE", "0.3")
	t.Setenv("POLISH_CACHE_TTL", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FALLBACK_MESSAGES_JSON", `{"en":"Sorry","it":"Scusa"}`)
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("expected text log format, got %s", cfg.LogFormat)
	}
	if cfg.CatalogS3Bucket != "guest-catalogs" || cfg.CatalogS3Prefix != "rome/" {
		t.Fatalf("expected s3 catalog override, got %s/%s", cfg.CatalogS3Bucket, cfg.CatalogS3Prefix)
	}
	if cfg.DefaultPropertyID != "TRASTEVERE5" {
		t.Fatalf("expected trimmed property override, got %q", cfg.DefaultPropertyID)
	}
	if cfg.PolishProvider != "bedrock" {
		t.Fatalf("expected bedrock provider, got %s", cfg.PolishProvider)
	}
	if cfg.PolishTimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.PolishTimeout)
	}
	if cfg.PolishTemperature != 0.3 {
		t.Fatalf("expected temperature override, got %v", cfg.PolishTemperature)
	}
	if cfg.PolishCacheTTL != 24*time.Hour {
		t.Fatalf("expected invalid ttl to fall back to default, got %s", cfg.PolishCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	messages, err := cfg.FallbackMessages()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messages["it"] != "Scusa" {
		t.Fatalf("expected italian fallback, got %v", messages)
	}
}

func TestFallbackMessagesInvalidJSON(t *testing.T) {
	cfg := &Config{FallbackMessagesJSON: "{not json"}
	if _, err := cfg.FallbackMessages(); err == nil {
		t.Fatalf("expected decode error")
	}
}
