package provider

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownEvent is returned when a raw event matches none of the known
// shapes.
var ErrUnknownEvent = errors.New("unknown provider event shape")

// MessageContent is the content block of a normalized message event
type MessageContent struct {
	Text     string `json:"text,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// RawEvent is the wire shape delivered by the provider adapter. Which
// fields are present determines the event kind; ParseEvent turns it into
// a typed event exactly once, at the intake boundary.
type RawEvent struct {
	AccountID         uuid.UUID       `json:"account_id"`
	AccountIdentifier string          `json:"account_identifier"`
	MessageID         string          `json:"message_id,omitempty"`
	From              string          `json:"from,omitempty"`
	To                string          `json:"to,omitempty"`
	Timestamp         int64           `json:"timestamp"`
	Type              string          `json:"type,omitempty"`
	Content           *MessageContent `json:"content,omitempty"`
	Direction         string          `json:"direction,omitempty"` // incoming, outgoing
	Status            string          `json:"status,omitempty"`
	PhoneNumber       string          `json:"phone_number,omitempty"`
	QRCode            string          `json:"qr_code,omitempty"`
	PushName          string          `json:"push_name,omitempty"`
	IsGroup           bool            `json:"is_group,omitempty"`
	FromMe            bool            `json:"from_me,omitempty"`
}

// Event is the tagged union of normalized provider events
type Event interface {
	eventKind() string
}

// InboundMessage is a message arriving on (or echoed by) an account
type InboundMessage struct {
	AccountID         uuid.UUID
	AccountIdentifier string
	MessageID         string
	From              string
	To                string
	Timestamp         time.Time
	Type              string
	Content           MessageContent
	Direction         string
	Status            string
	PushName          string
	IsGroup           bool
	FromMe            bool
}

// ConnectionUpdate signals an account lifecycle transition
type ConnectionUpdate struct {
	AccountID         uuid.UUID
	AccountIdentifier string
	Status            string // connecting, connected, disconnected, failed
	PhoneNumber       string
	Timestamp         time.Time
}

// QRIssued carries a fresh pairing code
type QRIssued struct {
	AccountID         uuid.UUID
	AccountIdentifier string
	QRCode            string
	Timestamp         time.Time
}

// DeliveryStatus updates the status of a previously sent message
type DeliveryStatus struct {
	AccountID         uuid.UUID
	AccountIdentifier string
	MessageID         string
	Status            string // sent, delivered, read, failed
	Timestamp         time.Time
}

func (InboundMessage) eventKind() string   { return "message" }
func (ConnectionUpdate) eventKind() string { return "connection" }
func (QRIssued) eventKind() string         { return "qr" }
func (DeliveryStatus) eventKind() string   { return "status" }

// ParseEvent classifies a raw event by shape: a message id plus content
// is an inbound message, a QR code is a pairing event, a message id plus
// status is a delivery update, and a bare status is a connection update.
func ParseEvent(raw RawEvent) (Event, error) {
	ts := time.UnixMilli(raw.Timestamp)
	if raw.Timestamp == 0 {
		ts = time.Now()
	}

	switch {
	case raw.MessageID != "" && raw.Content != nil:
		msgType := raw.Type
		if msgType == "" {
			msgType = "text"
		}
		direction := raw.Direction
		if direction == "" {
			direction = "incoming"
		}
		return InboundMessage{
			AccountID:         raw.AccountID,
			AccountIdentifier: raw.AccountIdentifier,
			MessageID:         raw.MessageID,
			From:              raw.From,
			To:                raw.To,
			Timestamp:         ts,
			Type:              msgType,
			Content:           *raw.Content,
			Direction:         direction,
			Status:            raw.Status,
			PushName:          raw.PushName,
			IsGroup:           raw.IsGroup,
			FromMe:            raw.FromMe,
		}, nil

	case raw.QRCode != "":
		return QRIssued{
			AccountID:         raw.AccountID,
			AccountIdentifier: raw.AccountIdentifier,
			QRCode:            raw.QRCode,
			Timestamp:         ts,
		}, nil

	case raw.Status != "" && raw.MessageID == "":
		return ConnectionUpdate{
			AccountID:         raw.AccountID,
			AccountIdentifier: raw.AccountIdentifier,
			Status:            raw.Status,
			PhoneNumber:       raw.PhoneNumber,
			Timestamp:         ts,
		}, nil

	case raw.MessageID != "" && raw.Status != "":
		return DeliveryStatus{
			AccountID:         raw.AccountID,
			AccountIdentifier: raw.AccountIdentifier,
			MessageID:         raw.MessageID,
			Status:            raw.Status,
			Timestamp:         ts,
		}, nil
	}

	return nil, ErrUnknownEvent
}
