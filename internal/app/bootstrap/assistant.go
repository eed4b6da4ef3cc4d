package bootstrap

import (
	"context"
	"fmt"

	"github.com/wolfman30/guest-assistant/internal/assistant"
	appconfig "github.com/wolfman30/guest-assistant/internal/config"
	"github.com/wolfman30/guest-assistant/internal/observability/metrics"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

// BuildFallbacks builds the no-match replies from FALLBACK_MESSAGES_JSON.
// The built-in English message fills in the default language when the
// configured set omits it and the default is English.
func BuildFallbacks(cfg *appconfig.Config) (*assistant.Fallbacks, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	messages, err := cfg.FallbackMessages()
	if err != nil {
		return nil, err
	}
	defaultLang := assistant.CanonicalLanguage(cfg.DefaultLanguage, assistant.DefaultLanguage)
	if messages == nil {
		messages = map[string]string{}
	}
	if defaultLang == assistant.DefaultLanguage {
		if _, ok := messages[assistant.DefaultLanguage]; !ok {
			messages[assistant.DefaultLanguage] = assistant.DefaultFallbackMessage
		}
	}
	fallbacks, err := assistant.NewFallbacks(messages, defaultLang)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: fallback messages: %w", err)
	}
	return fallbacks, nil
}

// BuildAssistant loads the catalog, wires the polisher and returns the
// answering service. The cleanup func must be called on shutdown.
func BuildAssistant(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, m *metrics.AssistantMetrics, logger *logging.Logger) (*assistant.Service, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cat, err := BuildCatalog(ctx, cfg, loadAWS, logger)
	if err != nil {
		return nil, noop, err
	}
	fallbacks, err := BuildFallbacks(cfg)
	if err != nil {
		return nil, noop, err
	}
	polisher, cleanup, err := BuildPolisher(ctx, cfg, loadAWS, logger)
	if err != nil {
		return nil, noop, err
	}

	svc := assistant.NewService(cat,
		assistant.WithFallbacks(fallbacks),
		assistant.WithPolisher(polisher),
		assistant.WithMetrics(m),
		assistant.WithLogger(logger),
	)
	return svc, cleanup, nil
}
