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

// ErrAccountQuotaExceeded is returned when a workspace is at its
// account limit
var ErrAccountQuotaExceeded = errors.New("workspace account quota exceeded")

// AccountService manages messaging account lifecycle: creation under
// quota, pairing, disconnects
type AccountService struct {
	registry      *provider.Registry
	accountRepo   *repo.AccountRepository
	workspaceRepo *repo.WorkspaceRepository
}

// NewAccountService creates a new account service
func NewAccountService(registry *provider.Registry, accountRepo *repo.AccountRepository, workspaceRepo *repo.WorkspaceRepository) *AccountService {
	return &AccountService{
		registry:      registry,
		accountRepo:   accountRepo,
		workspaceRepo: workspaceRepo,
	}
}

// Create registers a new account and kicks off pairing. The returned
// account carries the first QR code when the provider issued one.
func (s *AccountService) Create(ctx context.Context, workspaceID uuid.UUID, name, providerName string) (*models.Account, error) {
	workspace, err := s.workspaceRepo.GetByID(workspaceID)
	if err != nil {
		return nil, err
	}

	count, err := s.accountRepo.CountByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.MaxAccounts > 0 && count >= int64(workspace.MaxAccounts) {
		return nil, ErrAccountQuotaExceeded
	}

	if providerName == "" {
		providerName = models.ProviderBaileys
	}
	if _, err := s.registry.Get(providerName); err != nil {
		return nil, err
	}

	account := &models.Account{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               name,
		Provider:           providerName,
		AccountIdentifier:  fmt.Sprintf("wa-%s", uuid.New()),
		Status:             models.AccountStatusConnecting,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	if err := s.RefreshQR(ctx, account); err != nil {
		log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("initial pairing request failed")
	}
	return account, nil
}

// RefreshQR requests a fresh pairing code from the provider and stores
// it on the account
func (s *AccountService) RefreshQR(ctx context.Context, account *models.Account) error {
	prov, err := s.registry.Get(account.Provider)
	if err != nil {
		return err
	}

	pairing, err := prov.RequestPairing(ctx, account.AccountIdentifier)
	if err != nil {
		return fmt.Errorf("request pairing: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(pairing.ExpiresIn) * time.Second)
	if err := s.accountRepo.UpdateQR(account.ID, pairing.QRCode, expiresAt); err != nil {
		return err
	}

	account.QRCode = pairing.QRCode
	account.QRExpiresAt = &expiresAt
	return nil
}

// SyncStatus pulls the provider-side status and reconciles the stored
// lifecycle state
func (s *AccountService) SyncStatus(ctx context.Context, account *models.Account) (*provider.AccountStatus, error) {
	prov, err := s.registry.Get(account.Provider)
	if err != nil {
		return nil, err
	}

	status, err := prov.GetStatus(ctx, account.AccountIdentifier)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	if status.Status != account.Status {
		if err := s.accountRepo.UpdateStatus(account.ID, status.Status, status.PhoneNumber); err != nil {
			return nil, err
		}
	}
	return status, nil
}

// Disconnect tears down the provider session and marks the account
// disconnected
func (s *AccountService) Disconnect(ctx context.Context, account *models.Account) error {
	prov, err := s.registry.Get(account.Provider)
	if err != nil {
		return err
	}

	if err := prov.Disconnect(ctx, account.AccountIdentifier); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return s.accountRepo.UpdateStatus(account.ID, models.AccountStatusDisconnected, "")
}

// Delete disconnects best-effort and removes the account
func (s *AccountService) Delete(ctx context.Context, account *models.Account) error {
	if account.Status == models.AccountStatusConnected {
		if err := s.Disconnect(ctx, account); err != nil {
			log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("disconnect before delete failed")
		}
	}
	return s.accountRepo.Delete(account.ID, account.WorkspaceID)
}
