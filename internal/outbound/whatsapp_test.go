package outbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

func TestWhatsappSenderDelivers(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/send", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(sendResponse{MessageID: "wamid-99"})
	}))
	defer srv.Close()

	s := NewWhatsappSender(srv.URL, "tok", time.Second, logging.New(nil, "silent"))
	id, err := s.Send(context.Background(), "salon-1", "+55119", "Olá!")

	require.NoError(t, err)
	assert.Equal(t, "wamid-99", id)
	assert.Equal(t, "salon-1", got.SalonID)
	assert.Equal(t, "Olá!", got.Text)
}

func TestWhatsappSenderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewWhatsappSender(srv.URL, "", time.Second, logging.New(nil, "silent"))
	_, err := s.Send(context.Background(), "salon-1", "+55119", "Olá!")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWhatsappSenderFillsMissingMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewWhatsappSender(srv.URL, "", time.Second, logging.New(nil, "silent"))
	id, err := s.Send(context.Background(), "salon-1", "+55119", "Olá!")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestConsoleSenderReturnsID(t *testing.T) {
	s := NewConsoleSender(logging.New(nil, "silent"))
	id, err := s.Send(context.Background(), "salon-1", "+55119", "Olá!")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
