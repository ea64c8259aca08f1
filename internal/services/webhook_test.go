package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeWebhookStore struct {
	config *models.WebhookConfig

	failures  int
	resets    int
	disabled  bool
	triggered int
}

func (f *fakeWebhookStore) GetActive(workspaceID uuid.UUID) (*models.WebhookConfig, error) {
	if f.config == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.config, nil
}

func (f *fakeWebhookStore) IncrementFailure(id uuid.UUID) (int, error) {
	f.failures++
	return f.failures, nil
}

func (f *fakeWebhookStore) ResetFailure(id uuid.UUID) error {
	f.resets++
	f.failures = 0
	return nil
}

func (f *fakeWebhookStore) Disable(id uuid.UUID) error {
	f.disabled = true
	return nil
}

func (f *fakeWebhookStore) TouchTriggered(id uuid.UUID) error {
	f.triggered++
	return nil
}

func webhookConfigFor(url string) *models.WebhookConfig {
	return &models.WebhookConfig{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		WorkspaceID: uuid.New(),
		URL:         url,
		Secret:      "test-secret",
		IsActive:    true,
	}
}

func TestDispatchSuccessResetsFailures(t *testing.T) {
	var delivered atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Webhook-Event") != models.EventMessageReceived {
			t.Errorf("X-Webhook-Event = %q", r.Header.Get("X-Webhook-Event"))
		}
		if r.Header.Get("X-Webhook-Signature") == "" {
			t.Error("missing X-Webhook-Signature header")
		}
		delivered.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &fakeWebhookStore{config: webhookConfigFor(server.URL), failures: 3}
	d := NewWebhookDispatcher(store)

	d.Dispatch(context.Background(), store.config.WorkspaceID, models.EventMessageReceived, map[string]interface{}{"x": 1})

	if delivered.Load() != 1 {
		t.Fatalf("delivered %d times, expected 1", delivered.Load())
	}
	if store.resets != 1 {
		t.Errorf("resets = %d, expected 1", store.resets)
	}
	if store.triggered != 1 {
		t.Errorf("triggered = %d, expected 1", store.triggered)
	}
}

func TestDispatchDisablesAfterThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := &fakeWebhookStore{config: webhookConfigFor(server.URL)}
	d := NewWebhookDispatcher(store)

	for i := 0; i < models.WebhookFailureThreshold; i++ {
		if store.disabled {
			t.Fatalf("disabled early, after %d failures", i)
		}
		d.Dispatch(context.Background(), store.config.WorkspaceID, models.EventMessageReceived, nil)
	}

	if store.failures != models.WebhookFailureThreshold {
		t.Errorf("failures = %d, expected %d", store.failures, models.WebhookFailureThreshold)
	}
	if !store.disabled {
		t.Error("webhook should be disabled at the failure threshold")
	}
}

func TestDispatchSkipsUnsubscribedEvents(t *testing.T) {
	var delivered atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
	}))
	defer server.Close()

	store := &fakeWebhookStore{config: webhookConfigFor(server.URL)}
	store.config.Events = models.StringList{models.EventQRCode}
	d := NewWebhookDispatcher(store)

	d.Dispatch(context.Background(), store.config.WorkspaceID, models.EventMessageReceived, nil)
	if delivered.Load() != 0 {
		t.Error("unsubscribed event should not be delivered")
	}

	d.Dispatch(context.Background(), store.config.WorkspaceID, models.EventQRCode, nil)
	if delivered.Load() != 1 {
		t.Error("subscribed event should be delivered")
	}
}

func TestDispatchNoConfigIsSilent(t *testing.T) {
	store := &fakeWebhookStore{}
	d := NewWebhookDispatcher(store)

	// No active config: nothing to deliver, nothing to count
	d.Dispatch(context.Background(), uuid.New(), models.EventMessageReceived, nil)
	if store.failures != 0 || store.resets != 0 {
		t.Error("missing config should be a no-op")
	}
}

func TestSendTestBypassesFailureCounter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store := &fakeWebhookStore{config: webhookConfigFor(server.URL)}
	d := NewWebhookDispatcher(store)

	if err := d.SendTest(context.Background(), store.config); err == nil {
		t.Fatal("expected delivery error from failing endpoint")
	}
	if store.failures != 0 {
		t.Errorf("test delivery should not count failures, got %d", store.failures)
	}
}

func TestWebhookSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"message.received"}`)

	sig := SignWebhookPayload("secret", body)
	if !VerifyWebhookSignature("secret", body, sig) {
		t.Error("signature should verify with the right secret")
	}
	if VerifyWebhookSignature("wrong", body, sig) {
		t.Error("signature should not verify with the wrong secret")
	}
	if VerifyWebhookSignature("secret", []byte("tampered"), sig) {
		t.Error("signature should not verify for a tampered body")
	}
}
