package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookRetryIntervals defines the delivery retry backoff.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
}

// NotificationPayload is the JSON structure delivered to the configured
// notification endpoint. Email, UI refresh, and admin-panel fan-out all
// live behind that endpoint, not here.
type NotificationPayload struct {
	UserID    string         `json:"user_id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
	Signature string         `json:"signature,omitempty"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SignatureService signs notification payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
}

// WebhookNotifier implements ports.NotificationSink by POSTing signed
// events to a single configured endpoint, asynchronously with retries.
// Delivery failure is logged and dropped; it never reaches the caller.
type WebhookNotifier struct {
	url        string
	secret     string
	sigSvc     SignatureService
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewWebhookNotifier creates a webhook-backed notification sink.
func NewWebhookNotifier(url, secret string, sigSvc SignatureService, httpClient HTTPClient, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		secret:     secret,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		log:        log,
	}
}

// Notify dispatches the event. Fire-and-forget: the send happens on a
// background goroutine and errors never propagate.
func (n *WebhookNotifier) Notify(ctx context.Context, userID uuid.UUID, event domain.EventType, payload map[string]any) {
	if n.url == "" {
		n.log.Debug().Str("event", string(event)).Msg("notify: no webhook URL configured, skipping")
		return
	}

	p := NotificationPayload{
		UserID:    userID.String(),
		EventType: string(event),
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}

	dataBytes, err := json.Marshal(p)
	if err != nil {
		n.log.Error().Err(err).Str("event", string(event)).Msg("notify: failed to marshal payload")
		return
	}
	p.Signature = n.sigSvc.Sign(n.secret, string(dataBytes))

	go n.deliverWithRetries(p, userID.String())
}

// deliverWithRetries attempts delivery with backoff until a 2xx response.
func (n *WebhookNotifier) deliverWithRetries(payload NotificationPayload, userID string) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("user_id", userID).Msg("notify: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(webhookRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(webhookRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(payloadBytes))
		if err != nil {
			n.log.Error().Err(err).Str("user_id", userID).Int("attempt", attempt+1).Msg("notify: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			n.log.Warn().Err(err).Str("user_id", userID).Int("attempt", attempt+1).Msg("notify: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Debug().Str("user_id", userID).Int("attempt", attempt+1).Msg("notify: delivered")
			return
		}

		n.log.Warn().Str("user_id", userID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("notify: non-2xx response, retrying")
	}

	n.log.Error().Str("user_id", userID).Str("event", payload.EventType).Msg("notify: all retry attempts exhausted")
}

// LogNotifier implements ports.NotificationSink by writing events to the
// logger only. Used in development and as a safe default.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a logger-backed notification sink.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the event.
func (n *LogNotifier) Notify(_ context.Context, userID uuid.UUID, event domain.EventType, payload map[string]any) {
	n.log.Info().
		Str("user_id", userID.String()).
		Str("event", string(event)).
		Interface("payload", payload).
		Msg("notification")
}

var _ ports.NotificationSink = (*WebhookNotifier)(nil)
var _ ports.NotificationSink = (*LogNotifier)(nil)
