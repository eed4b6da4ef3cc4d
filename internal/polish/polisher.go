package polish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/guest-assistant/internal/faq"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

var polishTracer = otel.Tracer("guest.internal.polish")

const (
	defaultTimeout   = 8 * time.Second
	defaultMaxTokens = 400
)

// Instructions is the system prompt sent with every polish request. The
// provider may change tone, language and length but never the facts.
var Instructions = strings.Join([]string{
	"You are a concise multilingual guest assistant for a vacation rental.",
	"Rewrite the provided answer keeping facts identical, no inventions.",
	"Use the same language as the user, keep under 120 words unless steps are needed.",
	"If fallback, ask one clarifying question.",
}, " ")

// Outcome classifies how a polish attempt ended. Disabled and failed both
// return the draft unchanged; they are kept apart for logs and metrics.
type Outcome string

const (
	OutcomePolished Outcome = "polished"
	OutcomeDisabled Outcome = "disabled"
	OutcomeFailed   Outcome = "failed"
)

// Input is everything a provider may see for one answer.
type Input struct {
	Draft       string
	UserMessage string
	PropertyID  string
	Property    faq.PropertyData
	Language    string
	Fallback    bool
}

// Result carries the text to return and how it was produced.
type Result struct {
	Text    string
	Outcome Outcome
	Cached  bool
	Err     error
	Usage   TokenUsage
}

// Polisher sends drafts to an LLMClient. A Polisher with no client is
// disabled and returns every draft untouched.
type Polisher struct {
	client    LLMClient
	provider  string
	timeout   time.Duration
	maxTokens int32
	temp      float32
	cache     Cache
	logger    *logging.Logger
}

// Option configures a Polisher.
type Option func(*Polisher)

// WithProvider names the provider for logs and cache keys.
func WithProvider(name string) Option {
	return func(p *Polisher) { p.provider = name }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(p *Polisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithMaxTokens(n int32) Option {
	return func(p *Polisher) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature. Zero keeps the provider
// default.
func WithTemperature(t float32) Option {
	return func(p *Polisher) {
		if t > 0 {
			p.temp = t
		}
	}
}

// WithCache stores successful rewrites.
func WithCache(c Cache) Option {
	return func(p *Polisher) { p.cache = c }
}

func WithLogger(logger *logging.Logger) Option {
	return func(p *Polisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPolisher creates a Polisher. client may be nil.
func NewPolisher(client LLMClient, opts ...Option) *Polisher {
	p := &Polisher{
		client:    client,
		provider:  "none",
		timeout:   defaultTimeout,
		maxTokens: defaultMaxTokens,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports whether a provider is configured.
func (p *Polisher) Enabled() bool {
	return p != nil && p.client != nil
}

// Provider returns the configured provider name.
func (p *Polisher) Provider() string {
	if p == nil {
		return "none"
	}
	return p.provider
}

// Polish rewrites in.Draft. It never returns an error: on any failure the
// result text is the draft, byte for byte.
func (p *Polisher) Polish(ctx context.Context, in Input) Result {
	if !p.Enabled() {
		return Result{Text: in.Draft, Outcome: OutcomeDisabled}
	}

	ctx, span := polishTracer.Start(ctx, "polish.rewrite")
	defer span.End()
	span.SetAttributes(
		attribute.String("guest.polish.provider", p.provider),
		attribute.String("guest.property_id", in.PropertyID),
		attribute.Bool("guest.polish.fallback", in.Fallback),
	)

	key := CacheKey(p.provider, in)
	if p.cache != nil {
		cached, ok, err := p.cache.Get(ctx, key)
		switch {
		case err != nil:
			p.logger.Warn("polish cache read failed", "error", err)
		case ok:
			span.SetAttributes(attribute.Bool("guest.polish.cached", true))
			return Result{Text: cached, Outcome: OutcomePolished, Cached: true}
		}
	}

	req, err := buildRequest(in, p.maxTokens, p.temp)
	if err != nil {
		return p.failed(span, in, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.Complete(callCtx, req)
	if err != nil {
		return p.failed(span, in, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return p.failed(span, in, ErrEmptyCompletion)
	}

	p.logger.Debug("polish succeeded",
		"provider", p.provider,
		"property_id", in.PropertyID,
		"duration_ms", time.Since(start).Milliseconds(),
		"output_tokens", resp.Usage.OutputTokens,
	)

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, text); err != nil {
			p.logger.Warn("polish cache write failed", "error", err)
		}
	}
	return Result{Text: text, Outcome: OutcomePolished, Usage: resp.Usage}
}

func (p *Polisher) failed(span trace.Span, in Input, err error) Result {
	span.RecordError(err)
	span.SetStatus(codes.Error, "polish failed")
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("polish: provider timed out after %s: %w", p.timeout, err)
	}
	p.logger.Warn("polish failed; returning unpolished answer",
		"provider", p.provider,
		"property_id", in.PropertyID,
		"error", err,
	)
	return Result{Text: in.Draft, Outcome: OutcomeFailed, Err: err}
}

func buildRequest(in Input, maxTokens int32, temperature float32) (LLMRequest, error) {
	propertyJSON, err := json.Marshal(in.Property)
	if err != nil {
		return LLMRequest{}, fmt.Errorf("polish: encode property data: %w", err)
	}

	answerKind := "direct answer"
	if in.Fallback {
		answerKind = "fallback (no direct answer found)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User message: [%s]\n", in.UserMessage)
	if in.Language != "" {
		fmt.Fprintf(&b, "Preferred language: %s\n", in.Language)
	}
	fmt.Fprintf(&b, "Answer type: %s\n", answerKind)
	fmt.Fprintf(&b, "Apartment data (JSON): %s\n", propertyJSON)
	fmt.Fprintf(&b, "Raw answer to polish:\n%s", in.Draft)

	return LLMRequest{
		System:      []string{Instructions},
		Prompt:      b.String(),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}
