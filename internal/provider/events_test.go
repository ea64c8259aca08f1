package provider

import (
	"testing"
	"time"
)

func TestParseEventClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  RawEvent
		want string
	}{
		{
			name: "inbound message",
			raw: RawEvent{
				AccountIdentifier: "wa-1",
				MessageID:         "msg-1",
				From:              "628111@s.whatsapp.net",
				Content:           &MessageContent{Text: "hello"},
			},
			want: "message",
		},
		{
			name: "outgoing echo still classifies as message",
			raw: RawEvent{
				AccountIdentifier: "wa-1",
				MessageID:         "msg-2",
				Content:           &MessageContent{Text: "sent from phone"},
				Direction:         "outgoing",
				FromMe:            true,
			},
			want: "message",
		},
		{
			name: "qr code",
			raw: RawEvent{
				AccountIdentifier: "wa-1",
				QRCode:            "2@abc123",
			},
			want: "qr",
		},
		{
			name: "connection update",
			raw: RawEvent{
				AccountIdentifier: "wa-1",
				Status:            "connected",
				PhoneNumber:       "628111",
			},
			want: "connection",
		},
		{
			name: "delivery status",
			raw: RawEvent{
				AccountIdentifier: "wa-1",
				MessageID:         "msg-3",
				Status:            "delivered",
			},
			want: "status",
		},
	}

	for _, test := range tests {
		event, err := ParseEvent(test.raw)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got := event.eventKind(); got != test.want {
			t.Errorf("%s: classified as %q, expected %q", test.name, got, test.want)
		}
	}
}

func TestParseEventUnknownShape(t *testing.T) {
	_, err := ParseEvent(RawEvent{AccountIdentifier: "wa-1"})
	if err != ErrUnknownEvent {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestParseEventDefaults(t *testing.T) {
	raw := RawEvent{
		AccountIdentifier: "wa-1",
		MessageID:         "msg-1",
		Content:           &MessageContent{Text: "hi"},
	}

	event, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, ok := event.(InboundMessage)
	if !ok {
		t.Fatalf("expected InboundMessage, got %T", event)
	}
	if msg.Type != "text" {
		t.Errorf("default type = %q, expected text", msg.Type)
	}
	if msg.Direction != "incoming" {
		t.Errorf("default direction = %q, expected incoming", msg.Direction)
	}
	// Zero timestamp falls back to receipt time
	if time.Since(msg.Timestamp) > time.Minute {
		t.Errorf("zero timestamp should fall back to now, got %v", msg.Timestamp)
	}
}

func TestParseEventTimestamp(t *testing.T) {
	raw := RawEvent{
		AccountIdentifier: "wa-1",
		MessageID:         "msg-1",
		Timestamp:         1700000000000,
		Content:           &MessageContent{Text: "hi"},
	}

	event, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := event.(InboundMessage)
	if !msg.Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("timestamp = %v, expected %v", msg.Timestamp, time.UnixMilli(1700000000000))
	}
}
