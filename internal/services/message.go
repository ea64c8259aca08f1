package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurfahmi/wa-gateway/internal/provider"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrAccountNotConnected is returned when sending through an account
// that has no live provider session
var ErrAccountNotConnected = errors.New("account is not connected")

// MessageService handles outbound message dispatch through providers,
// recording every attempt in the message log
type MessageService struct {
	registry    *provider.Registry
	accountRepo *repo.AccountRepository
	messageRepo *repo.MessageLogRepository
	contactRepo *repo.ContactRepository
}

// NewMessageService creates a new message service
func NewMessageService(registry *provider.Registry, accountRepo *repo.AccountRepository, messageRepo *repo.MessageLogRepository, contactRepo *repo.ContactRepository) *MessageService {
	return &MessageService{
		registry:    registry,
		accountRepo: accountRepo,
		messageRepo: messageRepo,
		contactRepo: contactRepo,
	}
}

// SendText sends a text message through a workspace's account
func (s *MessageService) SendText(ctx context.Context, workspaceID, accountID uuid.UUID, to, text string) (*models.MessageLog, error) {
	account, err := s.accountRepo.GetByIDAndWorkspace(accountID, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, account, to, text, provider.Media{})
}

// SendMedia sends a media message through a workspace's account
func (s *MessageService) SendMedia(ctx context.Context, workspaceID, accountID uuid.UUID, to string, media provider.Media) (*models.MessageLog, error) {
	account, err := s.accountRepo.GetByIDAndWorkspace(accountID, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, account, to, media.Caption, media)
}

// SendForAccount dispatches on behalf of the scheduler: the account is
// resolved by ID alone because the sweep already joined on workspace
// ownership. Returns the provider message id.
func (s *MessageService) SendForAccount(ctx context.Context, workspaceID, accountID uuid.UUID, to, text, mediaURL, mediaType string) (string, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return "", err
	}
	if account.WorkspaceID != workspaceID {
		return "", fmt.Errorf("account %s does not belong to workspace %s", accountID, workspaceID)
	}

	var media provider.Media
	if mediaURL != "" {
		media = provider.Media{Type: mediaType, URL: mediaURL, Caption: text}
	}

	logEntry, err := s.send(ctx, account, to, text, media)
	if err != nil {
		return "", err
	}
	return logEntry.MessageID, nil
}

// SendReply dispatches an automation reply on an account, honoring the
// configured delay. The delay is bounded so a misconfigured rule cannot
// park a goroutine for hours.
func (s *MessageService) SendReply(ctx context.Context, account *models.Account, to, text string, delaySeconds int) (*models.MessageLog, error) {
	if delaySeconds > 0 {
		if delaySeconds > 60 {
			delaySeconds = 60
		}
		select {
		case <-time.After(time.Duration(delaySeconds) * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.send(ctx, account, to, text, provider.Media{})
}

func (s *MessageService) send(ctx context.Context, account *models.Account, to, text string, media provider.Media) (*models.MessageLog, error) {
	if account.Status != models.AccountStatusConnected {
		return nil, ErrAccountNotConnected
	}

	prov, err := s.registry.Get(account.Provider)
	if err != nil {
		return nil, err
	}

	logEntry := &models.MessageLog{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: account.WorkspaceID},
		AccountID:          account.ID,
		Direction:          models.DirectionOut,
		FromNumber:         account.PhoneNumber,
		ToNumber:           to,
		MessageType:        "text",
		Content:            text,
	}

	var result *provider.SendResult
	if media.URL != "" {
		logEntry.MessageType = media.Type
		logEntry.MediaURL = media.URL
		logEntry.Caption = media.Caption
		result, err = prov.SendMedia(ctx, account.AccountIdentifier, to, media)
	} else {
		result, err = prov.SendText(ctx, account.AccountIdentifier, to, text)
	}

	now := time.Now()
	if err != nil {
		logEntry.Status = models.MessageStatusFailed
		logEntry.ErrorMessage = err.Error()
	} else {
		logEntry.MessageID = result.MessageID
		logEntry.Status = models.MessageStatusSent
		logEntry.SentAt = &now
	}

	if logErr := s.messageRepo.Create(logEntry); logErr != nil {
		log.Error().Err(logErr).Str("account_id", account.ID.String()).Msg("failed to record outbound message")
	}

	if err != nil {
		return logEntry, fmt.Errorf("provider send: %w", err)
	}

	if statErr := s.contactRepo.IncrementMessageStats(account.WorkspaceID, to); statErr != nil {
		log.Warn().Err(statErr).Str("to", to).Msg("failed to bump contact message stats")
	}

	return logEntry, nil
}
