// Package outbound delivers assistant replies to the WhatsApp provider.
package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

// WhatsappSender posts replies to the provider's send endpoint.
type WhatsappSender struct {
	baseURL string
	token   string
	client  *http.Client
	log     *logging.Logger
}

// NewWhatsappSender creates a provider client. timeout bounds every call.
func NewWhatsappSender(baseURL, token string, timeout time.Duration, log *logging.Logger) *WhatsappSender {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WhatsappSender{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log.Sub("outbound"),
	}
}

type sendRequest struct {
	SalonID string `json:"salonId"`
	Phone   string `json:"phone"`
	Text    string `json:"text"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// Send delivers one reply and returns the provider message ID.
func (s *WhatsappSender) Send(ctx context.Context, salonID, phone, text string) (string, error) {
	payload, err := json.Marshal(sendRequest{SalonID: salonID, Phone: phone, Text: text})
	if err != nil {
		return "", fmt.Errorf("marshaling send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("provider error (%d): %s", resp.StatusCode, string(body))
	}

	var result sendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if result.MessageID == "" {
		result.MessageID = uuid.New().String()
	}
	return result.MessageID, nil
}

// ConsoleSender writes replies to the log instead of a provider. Used in
// development when no provider endpoint is configured.
type ConsoleSender struct {
	log *logging.Logger
}

func NewConsoleSender(log *logging.Logger) *ConsoleSender {
	return &ConsoleSender{log: log.Sub("outbound")}
}

func (s *ConsoleSender) Send(ctx context.Context, salonID, phone, text string) (string, error) {
	s.log.Info().
		Str("salon_id", salonID).
		Str("phone", phone).
		Str("text", text).
		Msg("outbound reply (console)")
	return uuid.New().String(), nil
}
