package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/version"
)

const maxBodyBytes = 64 << 10 // webhook payloads are small; reject anything larger

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/v1/messages", s.requireAuth(http.HandlerFunc(s.handleInbound)))
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleInbound accepts one webhook delivery. The event is acknowledged
// with 202 before the engine processes it: debounce holds the turn open
// for seconds, and providers retry deliveries that do not ack quickly.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var ev domain.InboundEvent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}
	if !ev.Valid() {
		writeError(w, http.StatusBadRequest, "event missing salonId, phone or messageId")
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx := context.WithoutCancel(s.rootCtx)
		if err := s.handler.HandleInbound(ctx, ev); err != nil {
			s.log.Error().Err(err).
				Str("message_id", ev.MessageID).
				Str("phone", ev.Phone).
				Msg("inbound event failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"accepted":  true,
		"messageId": ev.MessageID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
