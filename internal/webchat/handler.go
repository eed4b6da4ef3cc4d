// Package webchat exposes the guest assistant over HTTP: a JSON endpoint,
// a WebSocket chat and the single-page widget that calls them.
package webchat

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/guest-assistant/internal/assistant"
	"github.com/wolfman30/guest-assistant/internal/catalog"
	"github.com/wolfman30/guest-assistant/internal/observability/metrics"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

// MaxBodyBytes caps the JSON request body of /api/message.
const MaxBodyBytes = 16 << 10

//go:embed static/index.html.tmpl
var staticFS embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFS, "static/index.html.tmpl"))

var defaultSuggestions = []string{
	"wifi", "water", "TV", "trash", "check in", "check out",
	"restaurants", "drinks", "shopping", "what to visit", "hidden gems", "emergency",
}

// Answerer answers one guest message.
type Answerer interface {
	Answer(ctx context.Context, req assistant.Request) (assistant.Response, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	answerer        Answerer
	stats           func() catalog.Stats
	defaultProperty string
	metrics         *metrics.AssistantMetrics
	logger          *logging.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithCatalog reports catalog counts on /health and names the widget's
// default property.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(h *Handler) {
		if cat == nil {
			return
		}
		h.stats = cat.Stats
		h.defaultProperty = cat.DefaultProperty()
	}
}

func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates a web chat handler.
func NewHandler(answerer Answerer, logger *logging.Logger, opts ...Option) *Handler {
	if answerer == nil {
		panic("webchat: answerer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{answerer: answerer, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MessageRequest is the body of POST /api/message. AptID is the legacy
// name for PropertyID and is used only when PropertyID is empty.
type MessageRequest struct {
	Message    string `json:"message"`
	PropertyID string `json:"propertyId,omitempty"`
	AptID      string `json:"aptId,omitempty"`
	Language   string `json:"language,omitempty"`
}

// MessageResponse is the reply to POST /api/message. Intent is null when
// nothing matched.
type MessageResponse struct {
	Text       string  `json:"text"`
	Intent     *string `json:"intent"`
	PropertyID string  `json:"propertyId"`
	Language   string  `json:"language"`
	Polished   bool    `json:"polished"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newMessageResponse(resp assistant.Response) MessageResponse {
	out := MessageResponse{
		Text:       resp.Text,
		PropertyID: resp.PropertyID,
		Language:   resp.Language,
		Polished:   resp.Polished,
	}
	if resp.Matched {
		intent := resp.Intent
		out.Intent = &intent
	}
	return out
}

// HandleMessage answers a single JSON message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	// An empty body is an empty message and gets the fallback.
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.metrics.ObserveRejected("bad_request")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	propertyID := req.PropertyID
	if strings.TrimSpace(propertyID) == "" {
		propertyID = req.AptID
	}

	resp, err := h.answerer.Answer(r.Context(), assistant.Request{
		Message:    req.Message,
		PropertyID: propertyID,
		Language:   req.Language,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrUnknownProperty) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid property id"})
			return
		}
		h.logger.Error("webchat: answer failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, newMessageResponse(resp))
}

// InboundMessage is what the widget sends over the WebSocket.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string  `json:"type"` // "session", "message", "pong", "error"
	Text      string  `json:"text,omitempty"`
	Intent    *string `json:"intent,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
	Polished  bool    `json:"polished,omitempty"`
}

// HandleWebSocket upgrades to WebSocket and answers each message frame.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	propertyID := r.URL.Query().Get("property")
	lang := r.URL.Query().Get("lang")
	sessionID := uuid.NewString()

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	h.metrics.SessionOpened()
	defer h.metrics.SessionClosed()
	h.logger.Info("webchat: connection opened", "property_id", propertyID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" {
			continue
		}

		resp, err := h.answerer.Answer(r.Context(), assistant.Request{
			Message:    msg.Text,
			PropertyID: propertyID,
			Language:   lang,
		})
		if errors.Is(err, assistant.ErrUnknownProperty) {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "invalid property id"})
			return
		}
		if err != nil {
			h.logger.Error("webchat: answer failed", "error", err, "session_id", sessionID)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
			continue
		}

		out := newMessageResponse(resp)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:     "message",
			Text:     out.Text,
			Intent:   out.Intent,
			Polished: out.Polished,
		})
	}
}

type indexData struct {
	PropertyID  string
	Suggestions []string
}

// HandleIndex serves the chat page. ?property= selects the apartment.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	propertyID := strings.TrimSpace(r.URL.Query().Get("property"))
	if propertyID == "" {
		propertyID = h.defaultProperty
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{PropertyID: propertyID, Suggestions: defaultSuggestions}); err != nil {
		h.logger.Error("webchat: render index", "error", err)
	}
}

// HandleHealth reports liveness and catalog size.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.stats != nil {
		stats := h.stats()
		body["faqs"] = stats.FAQs
		body["properties"] = stats.Properties
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
