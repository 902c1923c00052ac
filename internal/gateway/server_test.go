package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/config"
	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []domain.InboundEvent
}

func (h *recordingHandler) HandleInbound(ctx context.Context, ev domain.InboundEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (h *recordingHandler) last() domain.InboundEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events[len(h.events)-1]
}

func testServer(t *testing.T, token string) (*Server, *recordingHandler) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Salon.ID = "salon-1"
	cfg.Server.Token = token
	rec := &recordingHandler{}
	srv := New(cfg, rec, prometheus.NewRegistry(), logging.New(nil, "silent"))
	return srv, rec
}

func postEvent(t *testing.T, srv *Server, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func eventBody(t *testing.T, ev domain.InboundEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

// waitFor polls until fn returns true or the deadline passes. The inbound
// handler acks before processing, so tests wait for the async hand-off.
func waitFor(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestInboundAcceptedAndDispatched(t *testing.T) {
	srv, rec := testServer(t, "secret")
	ev := domain.InboundEvent{
		SalonID:   "salon-1",
		Phone:     "+5511987654321",
		Name:      "Maria",
		Text:      "oi, quero marcar um horário",
		MessageID: "wamid-1",
		Timestamp: time.Now(),
	}

	w := postEvent(t, srv, "secret", eventBody(t, ev))

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["accepted"])
	assert.Equal(t, "wamid-1", resp["messageId"])

	waitFor(t, func() bool { return rec.count() == 1 })
	assert.Equal(t, "oi, quero marcar um horário", rec.last().Text)
}

func TestInboundFillsMissingTimestamp(t *testing.T) {
	srv, rec := testServer(t, "")
	ev := domain.InboundEvent{
		SalonID:   "salon-1",
		Phone:     "+5511987654321",
		Text:      "oi",
		MessageID: "wamid-2",
	}

	w := postEvent(t, srv, "", eventBody(t, ev))

	require.Equal(t, http.StatusAccepted, w.Code)
	waitFor(t, func() bool { return rec.count() == 1 })
	assert.False(t, rec.last().Timestamp.IsZero())
}

func TestInboundRejectsMalformedPayloads(t *testing.T) {
	srv, rec := testServer(t, "")

	cases := map[string][]byte{
		"invalid json":  []byte(`{not json`),
		"unknown field": []byte(`{"salonId":"s","phone":"p","messageId":"m","bogus":1}`),
		"missing phone": eventBody(t, domain.InboundEvent{SalonID: "salon-1", MessageID: "m", Text: "oi"}),
	}
	for name, body := range cases {
		w := postEvent(t, srv, "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	assert.Equal(t, 0, rec.count())
}

func TestInboundRequiresToken(t *testing.T) {
	srv, rec := testServer(t, "secret")
	body := eventBody(t, domain.InboundEvent{
		SalonID: "salon-1", Phone: "+55119", MessageID: "m1", Text: "oi",
	})

	w := postEvent(t, srv, "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postEvent(t, srv, "wrong", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, 0, rec.count())

	w = postEvent(t, srv, "secret", body)
	assert.Equal(t, http.StatusAccepted, w.Code)
	waitFor(t, func() bool { return rec.count() == 1 })
}

func TestWebhookTokenHeaderFallback(t *testing.T) {
	srv, rec := testServer(t, "secret")
	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	body := eventBody(t, domain.InboundEvent{
		SalonID: "salon-1", Phone: "+55119", MessageID: "m1", Text: "oi",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Token", "secret")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	waitFor(t, func() bool { return rec.count() == 1 })
}

func TestAuthLockoutAfterRepeatedFailures(t *testing.T) {
	srv, _ := testServer(t, "secret")
	body := eventBody(t, domain.InboundEvent{
		SalonID: "salon-1", Phone: "+55119", MessageID: "m1", Text: "oi",
	})

	for i := 0; i < authRateMaxFails; i++ {
		w := postEvent(t, srv, "wrong", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// The right token no longer helps once the IP is locked out.
	w := postEvent(t, srv, "secret", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthIsUnauthenticated(t *testing.T) {
	srv, _ := testServer(t, "secret")
	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	srv, _ := testServer(t, "secret")
	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolveBindAddr(t *testing.T) {
	cases := []struct {
		bind string
		host string
		want string
	}{
		{"loopback", "", "127.0.0.1:18790"},
		{"lan", "", "0.0.0.0:18790"},
		{"custom", "10.0.0.5", "10.0.0.5:18790"},
		{"custom", "", "0.0.0.0:18790"},
		{"", "", "127.0.0.1:18790"},
	}
	for _, tc := range cases {
		cfg := config.ServerConfig{Port: 18790, Bind: tc.bind, Host: tc.host}
		assert.Equal(t, tc.want, resolveBindAddr(cfg), tc.bind)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
