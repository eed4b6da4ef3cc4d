// Package assistant answers guest questions: it picks the property, matches
// the message to an FAQ intent, renders the answer from property data and
// optionally hands the draft to the polisher.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/guest-assistant/internal/catalog"
	"github.com/wolfman30/guest-assistant/internal/faq"
	"github.com/wolfman30/guest-assistant/internal/observability/metrics"
	"github.com/wolfman30/guest-assistant/internal/polish"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

var assistantTracer = otel.Tracer("guest.internal.assistant")

// ErrUnknownProperty is returned when a request names a property the catalog
// does not hold. Callers should treat it as invalid input.
var ErrUnknownProperty = errors.New("assistant: unknown property")

// Request is one guest message.
type Request struct {
	Message    string
	PropertyID string
	Language   string
}

// Response is the answer to a Request. Intent is empty when nothing matched
// and Text is the fallback message.
type Response struct {
	Text          string
	Intent        string
	Matched       bool
	Score         int
	PropertyID    string
	Language      string
	Polished      bool
	PolishOutcome polish.Outcome
}

// Service is safe for concurrent use. All state is read-only after
// construction.
type Service struct {
	catalog   *catalog.Catalog
	fallbacks *Fallbacks
	polisher  *polish.Polisher
	metrics   *metrics.AssistantMetrics
	logger    *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithFallbacks(f *Fallbacks) Option {
	return func(s *Service) {
		if f != nil {
			s.fallbacks = f
		}
	}
}

// WithPolisher enables rephrasing of drafts. Without it answers are returned
// as rendered.
func WithPolisher(p *polish.Polisher) Option {
	return func(s *Service) { s.polisher = p }
}

func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a Service over cat.
func NewService(cat *catalog.Catalog, opts ...Option) *Service {
	if cat == nil {
		panic("assistant: catalog cannot be nil")
	}
	s := &Service{
		catalog:   cat,
		fallbacks: DefaultFallbacks(),
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the catalog the service answers from.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Answer resolves req to a reply. The only error is ErrUnknownProperty;
// an unmatched message or a failed polish still produces a Response.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	ctx, span := assistantTracer.Start(ctx, "assistant.answer")
	defer span.End()

	propertyID := strings.TrimSpace(req.PropertyID)
	if propertyID == "" {
		propertyID = s.catalog.DefaultProperty()
	}
	span.SetAttributes(attribute.String("guest.property_id", propertyID))

	property, ok := s.catalog.Property(propertyID)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownProperty, propertyID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown property")
		s.metrics.ObserveRejected("unknown_property")
		s.logger.Info("rejected message for unknown property", "property_id", propertyID)
		return Response{}, err
	}

	lang := CanonicalLanguage(req.Language, s.fallbacks.DefaultLanguage())

	resp := Response{PropertyID: propertyID, Language: lang}
	match, found := s.catalog.Matcher().Match(req.Message)
	if found {
		resp.Intent = match.Entry.Intent
		resp.Matched = true
		resp.Score = match.Score
		resp.Text = faq.Render(match.Entry.AnswerTemplate, property)
	} else {
		resp.Text = s.fallbacks.For(lang)
	}

	result := s.polisher.Polish(ctx, polish.Input{
		Draft:       resp.Text,
		UserMessage: req.Message,
		PropertyID:  propertyID,
		Property:    property,
		Language:    lang,
		Fallback:    !found,
	})
	resp.Text = result.Text
	resp.PolishOutcome = result.Outcome
	resp.Polished = result.Outcome == polish.OutcomePolished

	span.SetAttributes(
		attribute.String("guest.intent", intentLabel(resp.Intent)),
		attribute.Int("guest.match_score", resp.Score),
		attribute.String("guest.language", lang),
		attribute.String("guest.polish.outcome", string(result.Outcome)),
	)

	s.metrics.ObserveAnswer(resp.Intent, propertyID)
	s.metrics.ObservePolish(s.polisher.Provider(), string(result.Outcome), result.Cached)
	s.metrics.ObserveLatency(resp.Polished, time.Since(start).Seconds())

	s.logger.Debug("answered guest message",
		"property_id", propertyID,
		"intent", intentLabel(resp.Intent),
		"score", resp.Score,
		"language", lang,
		"polish_outcome", result.Outcome,
	)
	return resp, nil
}

func intentLabel(intent string) string {
	if intent == "" {
		return "none"
	}
	return intent
}
