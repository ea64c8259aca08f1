package provider

import (
	"context"
	"fmt"
	"sync"
)

// SendResult is what a provider returns for an accepted message
type SendResult struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"` // sent, delivered, read, failed, received
}

// Media describes a media attachment to send
type Media struct {
	Type     string `json:"type"` // image, document, video, audio
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// AccountStatus is the provider-side view of an account
type AccountStatus struct {
	Status      string `json:"status"` // connecting, connected, disconnected, failed
	PhoneNumber string `json:"phone_number,omitempty"`
}

// PairingInfo carries the QR code issued for a pairing attempt
type PairingInfo struct {
	QRCode    string `json:"qr_code"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// Provider is the messaging transport capability. Pairing handshakes and
// the actual transport live behind this interface; the gateway only sees
// send results and normalized events.
type Provider interface {
	SendText(ctx context.Context, accountIdentifier, recipient, text string) (*SendResult, error)
	SendMedia(ctx context.Context, accountIdentifier, recipient string, media Media) (*SendResult, error)
	GetStatus(ctx context.Context, accountIdentifier string) (*AccountStatus, error)
	RequestPairing(ctx context.Context, accountIdentifier string) (*PairingInfo, error)
	Disconnect(ctx context.Context, accountIdentifier string) error
}

// Registry maps provider type names to implementations. Resolution
// happens once per call site, never through dynamic capability lookup.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under a type name
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get resolves a provider by type name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", name)
	}
	return p, nil
}

// Supported lists registered provider type names
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
