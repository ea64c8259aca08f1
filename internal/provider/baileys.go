package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// BaileysProvider talks to the external Baileys bridge over HTTP. The
// bridge owns the actual WhatsApp transport; this client only issues
// commands and reads back results.
type BaileysProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewBaileysProvider creates a Baileys HTTP provider from the environment
func NewBaileysProvider() *BaileysProvider {
	baseURL := os.Getenv("BAILEYS_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3025"
	}
	return NewBaileysProviderWithURL(baseURL)
}

// NewBaileysProviderWithURL creates a Baileys HTTP provider for a given
// base URL (used in tests)
func NewBaileysProviderWithURL(baseURL string) *BaileysProvider {
	return &BaileysProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type baileysSendRequest struct {
	SessionID string `json:"sessionId"`
	Recipient string `json:"recipient"`
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	Caption   string `json:"caption,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
}

type baileysSendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type baileysStatusResponse struct {
	Status      string `json:"status"`
	PhoneNumber string `json:"phoneNumber"`
}

type baileysPairingResponse struct {
	QRCode    string `json:"qrCode"`
	ExpiresIn int    `json:"expiresIn"`
}

func (p *BaileysProvider) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("baileys API returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SendText sends a text message through a session
func (p *BaileysProvider) SendText(ctx context.Context, accountIdentifier, recipient, text string) (*SendResult, error) {
	request := baileysSendRequest{
		SessionID: accountIdentifier,
		Recipient: recipient,
		Type:      "text",
		Text:      text,
	}

	var response baileysSendResponse
	if err := p.post(ctx, "/api/messages/send", request, &response); err != nil {
		return nil, err
	}

	log.Debug().
		Str("session", accountIdentifier).
		Str("recipient", recipient).
		Str("message_id", response.MessageID).
		Msg("Baileys message sent")

	return &SendResult{MessageID: response.MessageID, Status: response.Status}, nil
}

// SendMedia sends a media message through a session
func (p *BaileysProvider) SendMedia(ctx context.Context, accountIdentifier, recipient string, media Media) (*SendResult, error) {
	request := baileysSendRequest{
		SessionID: accountIdentifier,
		Recipient: recipient,
		Type:      media.Type,
		MediaURL:  media.URL,
		Caption:   media.Caption,
		FileName:  media.FileName,
		MimeType:  media.MimeType,
	}

	var response baileysSendResponse
	if err := p.post(ctx, "/api/messages/send", request, &response); err != nil {
		return nil, err
	}

	return &SendResult{MessageID: response.MessageID, Status: response.Status}, nil
}

// GetStatus fetches the provider-side session status
func (p *BaileysProvider) GetStatus(ctx context.Context, accountIdentifier string) (*AccountStatus, error) {
	url := fmt.Sprintf("%s/api/sessions/%s", p.baseURL, accountIdentifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("baileys API returned status %d", resp.StatusCode)
	}

	var response baileysStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &AccountStatus{Status: response.Status, PhoneNumber: response.PhoneNumber}, nil
}

// RequestPairing starts a session and returns the pairing QR code
func (p *BaileysProvider) RequestPairing(ctx context.Context, accountIdentifier string) (*PairingInfo, error) {
	request := map[string]string{"sessionId": accountIdentifier}

	var response baileysPairingResponse
	if err := p.post(ctx, "/api/sessions/start", request, &response); err != nil {
		return nil, err
	}

	expiresIn := response.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 60
	}

	return &PairingInfo{QRCode: response.QRCode, ExpiresIn: expiresIn}, nil
}

// Disconnect tears down the provider-side session
func (p *BaileysProvider) Disconnect(ctx context.Context, accountIdentifier string) error {
	url := fmt.Sprintf("%s/api/sessions/%s", p.baseURL, accountIdentifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to disconnect session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("baileys API returned status %d", resp.StatusCode)
	}

	log.Info().Str("session", accountIdentifier).Msg("Baileys session disconnected")
	return nil
}
