package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SignWebhookPayload computes the hex HMAC-SHA256 signature sent in the
// X-Webhook-Signature header
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks a received signature in constant time
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	expected := SignWebhookPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// webhookConfigStore persists webhook endpoint state and failure counts
type webhookConfigStore interface {
	GetActive(workspaceID uuid.UUID) (*models.WebhookConfig, error)
	IncrementFailure(id uuid.UUID) (int, error)
	ResetFailure(id uuid.UUID) error
	Disable(id uuid.UUID) error
	TouchTriggered(id uuid.UUID) error
}

// WebhookDispatcher delivers signed event notifications to customer
// endpoints. Consecutive failures past the threshold disable the
// endpoint until it is manually re-enabled.
type WebhookDispatcher struct {
	configRepo webhookConfigStore
	httpClient *http.Client
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(configRepo webhookConfigStore) *WebhookDispatcher {
	return &WebhookDispatcher{
		configRepo: configRepo,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Dispatch delivers an event to the workspace's webhook endpoint if one
// is active and subscribed. An empty subscription list means all
// events. Delivery failures are absorbed into the failure counter, not
// surfaced to the event source.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, workspaceID uuid.UUID, event string, data map[string]interface{}) {
	config, err := d.configRepo.GetActive(workspaceID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error().Err(err).Str("workspace_id", workspaceID.String()).Msg("failed to load webhook config")
		}
		return
	}

	if !subscribed(config.Events, event) {
		return
	}

	if err := d.deliver(ctx, config, event, workspaceID, data); err != nil {
		d.recordFailure(config, event, err)
		return
	}

	if err := d.configRepo.ResetFailure(config.ID); err != nil {
		log.Warn().Err(err).Str("webhook_id", config.ID.String()).Msg("failed to reset webhook failure count")
	}
	if err := d.configRepo.TouchTriggered(config.ID); err != nil {
		log.Warn().Err(err).Str("webhook_id", config.ID.String()).Msg("failed to record webhook delivery time")
	}
}

// SendTest delivers a webhook.test event to a given config and returns
// the delivery error directly, bypassing the failure counter
func (d *WebhookDispatcher) SendTest(ctx context.Context, config *models.WebhookConfig) error {
	return d.deliver(ctx, config, models.EventWebhookTest, config.WorkspaceID, map[string]interface{}{
		"message": "webhook test delivery",
	})
}

func (d *WebhookDispatcher) deliver(ctx context.Context, config *models.WebhookConfig, event string, workspaceID uuid.UUID, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"event":        event,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"workspace_id": workspaceID,
		"data":         data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "WA-Gateway-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", event)
	if config.Secret != "" {
		req.Header.Set("X-Webhook-Signature", SignWebhookPayload(config.Secret, body))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (d *WebhookDispatcher) recordFailure(config *models.WebhookConfig, event string, cause error) {
	count, err := d.configRepo.IncrementFailure(config.ID)
	if err != nil {
		log.Error().Err(err).Str("webhook_id", config.ID.String()).Msg("failed to increment webhook failure count")
		return
	}

	log.Warn().Err(cause).
		Str("webhook_id", config.ID.String()).
		Str("event", event).
		Int("failure_count", count).
		Msg("webhook delivery failed")

	if count >= models.WebhookFailureThreshold {
		if err := d.configRepo.Disable(config.ID); err != nil {
			log.Error().Err(err).Str("webhook_id", config.ID.String()).Msg("failed to disable webhook")
			return
		}
		log.Warn().
			Str("webhook_id", config.ID.String()).
			Int("failure_count", count).
			Msg("webhook disabled after repeated failures")
	}
}

func subscribed(events models.StringList, event string) bool {
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
