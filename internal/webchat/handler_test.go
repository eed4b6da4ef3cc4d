package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/guest-assistant/internal/assistant"
	"github.com/wolfman30/guest-assistant/internal/catalog"
	"github.com/wolfman30/guest-assistant/internal/faq"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.Options{
		FAQs: []faq.Entry{
			{Intent: "wifi", Utterances: []string{"wifi", "password"}, AnswerTemplate: "Network: {wifi_ssid}, Password: {wifi_password}"},
			{Intent: "emergency", Utterances: []string{"emergency"}, AnswerTemplate: "Call {host_phone} or {missing_field}"},
		},
		Properties: map[string]faq.PropertyData{
			"LEONINA71": {"wifi_ssid": "Leonina71", "wifi_password": "Roma2024", "host_phone": "+39 335 5245756"},
		},
		DefaultProperty: "LEONINA71",
	})
	require.NoError(t, err)
	return cat
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cat := newTestCatalog(t)
	svc := assistant.NewService(cat, assistant.WithLogger(logging.New("error")))
	return NewHandler(svc, logging.New("error"), WithCatalog(cat))
}

// failingAnswerer simulates an unexpected pipeline error.
type failingAnswerer struct{}

func (failingAnswerer) Answer(context.Context, assistant.Request) (assistant.Response, error) {
	return assistant.Response{}, errors.New("boom")
}

func postMessage(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleMessage(w, req)
	return w
}

func TestHandleMessage_Match(t *testing.T) {
	w := postMessage(newTestHandler(t), `{"message":"What's the WIFI password?","propertyId":"LEONINA71"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Network: Leonina71, Password: Roma2024", resp.Text)
	require.NotNil(t, resp.Intent)
	assert.Equal(t, "wifi", *resp.Intent)
	assert.Equal(t, "LEONINA71", resp.PropertyID)
	assert.Equal(t, "en", resp.Language)
	assert.False(t, resp.Polished)
}

func TestHandleMessage_NoMatchHasNullIntent(t *testing.T) {
	w := postMessage(newTestHandler(t), `{"message":"hello there"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, assistant.DefaultFallbackMessage, raw["text"])
	intent, present := raw["intent"]
	assert.True(t, present)
	assert.Nil(t, intent)
}

func TestHandleMessage_LegacyAptID(t *testing.T) {
	h := newTestHandler(t)

	w := postMessage(h, `{"message":"emergency","aptId":"LEONINA71"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Call +39 335 5245756 or {missing_field}", resp.Text)

	// propertyId wins over aptId.
	w = postMessage(h, `{"message":"wifi","propertyId":"XX000","aptId":"LEONINA71"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMessage_UnknownProperty(t *testing.T) {
	w := postMessage(newTestHandler(t), `{"message":"wifi","aptId":"XX000"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid property id", resp["error"])
}

func TestHandleMessage_BadBody(t *testing.T) {
	h := newTestHandler(t)

	w := postMessage(h, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMessage(h, `{"message":"`+strings.Repeat("a", MaxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleMessage_EmptyBody(t *testing.T) {
	w := postMessage(newTestHandler(t), "")
	assert.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, assistant.DefaultFallbackMessage, raw["text"])
	assert.Contains(t, raw, "intent")
	assert.Nil(t, raw["intent"])
	assert.Equal(t, "LEONINA71", raw["propertyId"])
}

func TestHandleMessage_InternalError(t *testing.T) {
	h := NewHandler(failingAnswerer{}, logging.New("error"))
	w := postMessage(h, `{"message":"wifi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(t).HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(2), resp["faqs"])
	assert.Equal(t, float64(1), resp["properties"])
}

func TestHandleIndex(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleIndex(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Apartment: LEONINA71")
	assert.Contains(t, body, "/api/message")

	w = httptest.NewRecorder()
	h.HandleIndex(w, httptest.NewRequest(http.MethodGet, "/?property=%3Cscript%3E", nil))
	assert.NotContains(t, w.Body.String(), "Apartment: <script>")
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHandleWebSocket(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "?property=LEONINA71&lang=it")

	var session OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &session))
	assert.Equal(t, "session", session.Type)
	_, err := uuid.Parse(session.SessionID)
	require.NoError(t, err)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	var pong OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &pong))
	assert.Equal(t, "pong", pong.Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "wifi password?"}))
	var reply OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &reply))
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "Network: Leonina71, Password: Roma2024", reply.Text)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, "wifi", *reply.Intent)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello there"}))
	var fallback OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &fallback))
	assert.Equal(t, assistant.DefaultFallbackMessage, fallback.Text)
	assert.Nil(t, fallback.Intent)
}

func TestHandleWebSocket_BlankMessageGetsFallback(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "")

	var session OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &session))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "   "}))
	var reply OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &reply))
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, assistant.DefaultFallbackMessage, reply.Text)
	assert.Nil(t, reply.Intent)
}

func TestHandleWebSocket_UnknownProperty(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "?property=XX000")

	var session OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &session))

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "wifi"}))
	var errMsg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &errMsg))
	assert.Equal(t, "error", errMsg.Type)
	assert.Equal(t, "invalid property id", errMsg.Text)

	var next OutboundMessage
	assert.Error(t, websocket.JSON.Receive(conn, &next))
}
