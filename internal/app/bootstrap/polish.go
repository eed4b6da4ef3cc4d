package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/guest-assistant/internal/config"
	"github.com/wolfman30/guest-assistant/internal/polish"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

const (
	providerAuto    = "auto"
	providerNone    = "none"
	providerOpenAI  = "openai"
	providerBedrock = "bedrock"
	providerGemini  = "gemini"
)

// autoOrder is the preference order when POLISH_PROVIDER is auto.
var autoOrder = []string{providerOpenAI, providerBedrock, providerGemini}

// configuredProviders lists the providers that have credentials, in
// preference order.
func configuredProviders(cfg *appconfig.Config) []string {
	var out []string
	for _, name := range autoOrder {
		if providerConfigured(cfg, name) {
			out = append(out, name)
		}
	}
	return out
}

func providerConfigured(cfg *appconfig.Config, name string) bool {
	switch name {
	case providerOpenAI:
		return strings.TrimSpace(cfg.OpenAIAPIKey) != ""
	case providerBedrock:
		return strings.TrimSpace(cfg.BedrockModelID) != ""
	case providerGemini:
		return strings.TrimSpace(cfg.GeminiAPIKey) != ""
	}
	return false
}

// selectProviders returns the primary and optional secondary provider names.
// An empty primary means polishing is disabled.
func selectProviders(cfg *appconfig.Config) (primary, secondary string, err error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.PolishProvider))
	switch mode {
	case "", providerAuto:
		configured := configuredProviders(cfg)
		if len(configured) > 0 {
			primary = configured[0]
		}
		if len(configured) > 1 {
			secondary = configured[1]
		}
		return primary, secondary, nil
	case providerNone, "off", "disabled":
		return "", "", nil
	case providerOpenAI, providerBedrock, providerGemini:
		if !providerConfigured(cfg, mode) {
			return "", "", nil
		}
		return mode, "", nil
	default:
		return "", "", fmt.Errorf("bootstrap: unknown polish provider %q", cfg.PolishProvider)
	}
}

// BuildPolisher wires the rephrasing step from config. It always returns a
// usable Polisher; with no credentials it is disabled. The returned cleanup
// releases provider and cache connections.
func BuildPolisher(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (*polish.Polisher, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primaryName, secondaryName, err := selectProviders(cfg)
	if err != nil {
		return nil, noop, err
	}
	if primaryName == "" {
		logger.Info("polish disabled; answers are returned as rendered", "polish_provider", cfg.PolishProvider)
		return polish.NewPolisher(nil, polish.WithLogger(logger)), noop, nil
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	primary, closePrimary, err := buildLLMClient(ctx, cfg, primaryName, loadAWS)
	if err != nil {
		return nil, noop, err
	}
	cleanups = append(cleanups, closePrimary)

	client := polish.LLMClient(primary)
	providerLabel := primaryName
	if secondaryName != "" {
		secondary, closeSecondary, err := buildLLMClient(ctx, cfg, secondaryName, loadAWS)
		if err != nil {
			logger.Warn("secondary polish provider unavailable", "provider", secondaryName, "error", err)
		} else {
			cleanups = append(cleanups, closeSecondary)
			client = polish.NewFallbackClient(primary, secondary, logger)
			providerLabel = primaryName + "+" + secondaryName
		}
	}

	opts := []polish.Option{
		polish.WithProvider(providerLabel),
		polish.WithTimeout(cfg.PolishTimeout),
		polish.WithMaxTokens(int32(cfg.PolishMaxTokens)),
		polish.WithTemperature(float32(cfg.PolishTemperature)),
		polish.WithLogger(logger),
	}
	if redisClient := BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		opts = append(opts, polish.WithCache(polish.NewRedisCache(redisClient, cfg.PolishCacheTTL)))
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		logger.Info("polish cache enabled", "redis", cfg.RedisAddr, "ttl", cfg.PolishCacheTTL)
	}

	logger.Info("polish enabled", "provider", providerLabel, "timeout", cfg.PolishTimeout)
	return polish.NewPolisher(client, opts...), cleanup, nil
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, name string, loadAWS AWSConfigLoader) (polish.LLMClient, func(), error) {
	noop := func() {}
	switch name {
	case providerOpenAI:
		client, err := polish.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	case providerBedrock:
		if loadAWS == nil {
			return nil, noop, fmt.Errorf("bootstrap: aws config loader is required for bedrock")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return polish.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), noop, nil
	case providerGemini:
		client, err := polish.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return client, func() { _ = client.Close() }, nil
	}
	return nil, noop, fmt.Errorf("bootstrap: unknown polish provider %q", name)
}
