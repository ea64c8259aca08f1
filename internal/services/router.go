package services

import (
	"context"
	"time"

	"github.com/nurfahmi/wa-gateway/internal/provider"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Notifier pushes events to connected dashboard clients
type Notifier interface {
	Notify(workspaceID uuid.UUID, event string, data map[string]interface{})
}

// EventRouter normalizes provider events and fans them out: persistence,
// webhook delivery, dashboard push, and the automation pipeline for
// inbound messages.
type EventRouter struct {
	accountRepo *repo.AccountRepository
	contactRepo *repo.ContactRepository
	messageRepo *repo.MessageLogRepository
	automation  *AutomationService
	messages    *MessageService
	webhooks    *WebhookDispatcher
	notifier    Notifier
}

// NewEventRouter creates a new event router
func NewEventRouter(accountRepo *repo.AccountRepository, contactRepo *repo.ContactRepository, messageRepo *repo.MessageLogRepository, automation *AutomationService, messages *MessageService, webhooks *WebhookDispatcher, notifier Notifier) *EventRouter {
	return &EventRouter{
		accountRepo: accountRepo,
		contactRepo: contactRepo,
		messageRepo: messageRepo,
		automation:  automation,
		messages:    messages,
		webhooks:    webhooks,
		notifier:    notifier,
	}
}

// Pairing codes are short-lived; the provider rotates them about once
// a minute.
const qrValidity = 60 * time.Second

// HandleRaw parses a raw provider event and routes it. Unknown shapes
// are logged and dropped; one bad event must not wedge the intake.
func (r *EventRouter) HandleRaw(ctx context.Context, raw provider.RawEvent) error {
	event, err := provider.ParseEvent(raw)
	if err != nil {
		log.Warn().Err(err).Str("account_identifier", raw.AccountIdentifier).Msg("dropping unclassifiable provider event")
		return nil
	}

	account, err := r.accountRepo.GetByIdentifier(raw.AccountIdentifier)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn().Str("account_identifier", raw.AccountIdentifier).Msg("provider event for unknown account")
			return nil
		}
		return err
	}

	switch e := event.(type) {
	case provider.InboundMessage:
		return r.handleInbound(ctx, account, e)
	case provider.ConnectionUpdate:
		return r.handleConnection(ctx, account, e)
	case provider.QRIssued:
		return r.handleQR(ctx, account, e)
	case provider.DeliveryStatus:
		return r.handleDelivery(ctx, account, e)
	}
	return nil
}

func (r *EventRouter) handleInbound(ctx context.Context, account *models.Account, e provider.InboundMessage) error {
	// Echoes of our own sends are logged but never answered
	if e.FromMe || e.Direction == "outgoing" {
		echo := &models.MessageLog{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: account.WorkspaceID},
			AccountID:          account.ID,
			MessageID:          e.MessageID,
			Direction:          models.DirectionOut,
			FromNumber:         account.PhoneNumber,
			ToNumber:           e.To,
			MessageType:        e.Type,
			Content:            e.Content.Text,
			MediaURL:           e.Content.MediaURL,
			Caption:            e.Content.Caption,
			Status:             models.MessageStatusSent,
			IsGroup:            e.IsGroup,
		}
		return r.messageRepo.Create(echo)
	}

	contact, err := r.contactRepo.FindOrCreate(account.WorkspaceID, e.From, e.PushName)
	if err != nil {
		return err
	}
	isFirstContact := contact.MessageCount == 0

	logEntry := &models.MessageLog{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: account.WorkspaceID},
		AccountID:          account.ID,
		MessageID:          e.MessageID,
		Direction:          models.DirectionIn,
		FromNumber:         e.From,
		ToNumber:           account.PhoneNumber,
		MessageType:        e.Type,
		Content:            e.Content.Text,
		MediaURL:           e.Content.MediaURL,
		Caption:            e.Content.Caption,
		Status:             models.MessageStatusReceived,
		IsGroup:            e.IsGroup,
	}
	if err := r.messageRepo.Create(logEntry); err != nil {
		return err
	}

	if err := r.contactRepo.IncrementMessageStats(account.WorkspaceID, e.From); err != nil {
		log.Warn().Err(err).Str("contact", e.From).Msg("failed to bump contact message stats")
	}

	data := map[string]interface{}{
		"account_id":   account.ID,
		"message_id":   e.MessageID,
		"from":         e.From,
		"message_type": e.Type,
		"content":      e.Content.Text,
		"is_group":     e.IsGroup,
		"timestamp":    e.Timestamp.UTC().Format(time.RFC3339),
	}
	r.webhooks.Dispatch(ctx, account.WorkspaceID, models.EventMessageReceived, data)
	r.notify(account.WorkspaceID, models.EventMessageReceived, data)

	// Group chats and blocked contacts never get automated replies
	if e.IsGroup || contact.IsBlocked {
		return nil
	}

	reply := r.automation.Decide(ctx, account, contact, e.Content.Text, isFirstContact)
	if reply == nil {
		return nil
	}

	if _, err := r.messages.SendReply(ctx, account, contact.PhoneNumber, reply.Text, reply.DelaySeconds); err != nil {
		log.Error().Err(err).
			Str("contact", contact.PhoneNumber).
			Str("source", reply.Source).
			Msg("failed to send automated reply")
	}
	return nil
}

func (r *EventRouter) handleConnection(ctx context.Context, account *models.Account, e provider.ConnectionUpdate) error {
	if err := r.accountRepo.UpdateStatus(account.ID, e.Status, e.PhoneNumber); err != nil {
		return err
	}

	log.Info().
		Str("account_id", account.ID.String()).
		Str("status", e.Status).
		Msg("account connection update")

	data := map[string]interface{}{
		"account_id":   account.ID,
		"status":       e.Status,
		"phone_number": e.PhoneNumber,
	}
	r.webhooks.Dispatch(ctx, account.WorkspaceID, models.EventConnectionUpdate, data)
	r.notify(account.WorkspaceID, models.EventConnectionUpdate, data)
	return nil
}

func (r *EventRouter) handleQR(ctx context.Context, account *models.Account, e provider.QRIssued) error {
	expiresAt := e.Timestamp.Add(qrValidity)
	if err := r.accountRepo.UpdateQR(account.ID, e.QRCode, expiresAt); err != nil {
		return err
	}

	data := map[string]interface{}{
		"account_id": account.ID,
		"qr_code":    e.QRCode,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	}
	r.webhooks.Dispatch(ctx, account.WorkspaceID, models.EventQRCode, data)
	r.notify(account.WorkspaceID, models.EventQRCode, data)
	return nil
}

func (r *EventRouter) handleDelivery(ctx context.Context, account *models.Account, e provider.DeliveryStatus) error {
	logEntry, err := r.messageRepo.GetByMessageID(e.MessageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Debug().Str("message_id", e.MessageID).Msg("delivery status for unknown message")
			return nil
		}
		return err
	}

	if err := r.messageRepo.UpdateStatus(logEntry.ID, e.Status, e.Timestamp); err != nil {
		return err
	}

	data := map[string]interface{}{
		"account_id": account.ID,
		"message_id": e.MessageID,
		"status":     e.Status,
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339),
	}
	r.webhooks.Dispatch(ctx, account.WorkspaceID, models.EventMessageStatus, data)
	r.notify(account.WorkspaceID, models.EventMessageStatus, data)
	return nil
}

func (r *EventRouter) notify(workspaceID uuid.UUID, event string, data map[string]interface{}) {
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(workspaceID, event, data)
}
