package handlers

import (
	"net/http"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/services"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountHandler handles messaging account operations
type AccountHandler struct {
	accountService *services.AccountService
	accountRepo    *repo.AccountRepository
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService, accountRepo *repo.AccountRepository) *AccountHandler {
	return &AccountHandler{accountService: accountService, accountRepo: accountRepo}
}

// CreateAccountRequest represents the request to create an account
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Provider string `json:"provider"`
}

// List godoc
// @Summary List workspace accounts
// @Tags accounts
// @Produce json
// @Success 200 {array} models.Account
// @Router /accounts [get]
// @Security ApiKeyAuth
func (h *AccountHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	accounts, err := h.accountRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, accounts)
}

// Create godoc
// @Summary Create an account and start pairing
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body CreateAccountRequest true "Account data"
// @Success 201 {object} models.Account
// @Failure 402 {object} map[string]string
// @Router /accounts [post]
// @Security ApiKeyAuth
func (h *AccountHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	account, err := h.accountService.Create(c.Request().Context(), workspaceID, req.Name, req.Provider)
	if err != nil {
		if err == services.ErrAccountQuotaExceeded {
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "Account quota exceeded"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, account)
}

// GetByID godoc
// @Summary Get account by ID
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.Account
// @Router /accounts/{id} [get]
// @Security ApiKeyAuth
func (h *AccountHandler) GetByID(c echo.Context) error {
	account, ok := h.resolveAccount(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, account)
}

// GetQR godoc
// @Summary Get a fresh pairing QR code
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]interface{}
// @Router /accounts/{id}/qr [get]
// @Security ApiKeyAuth
func (h *AccountHandler) GetQR(c echo.Context) error {
	account, ok := h.resolveAccount(c)
	if !ok {
		return nil
	}

	if err := h.accountService.RefreshQR(c.Request().Context(), account); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"qr_code":       account.QRCode,
		"qr_expires_at": account.QRExpiresAt,
	})
}

// GetStatus godoc
// @Summary Get live account status from the provider
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} provider.AccountStatus
// @Router /accounts/{id}/status [get]
// @Security ApiKeyAuth
func (h *AccountHandler) GetStatus(c echo.Context) error {
	account, ok := h.resolveAccount(c)
	if !ok {
		return nil
	}

	status, err := h.accountService.SyncStatus(c.Request().Context(), account)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, status)
}

// Disconnect godoc
// @Summary Disconnect an account session
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]string
// @Router /accounts/{id}/disconnect [post]
// @Security ApiKeyAuth
func (h *AccountHandler) Disconnect(c echo.Context) error {
	account, ok := h.resolveAccount(c)
	if !ok {
		return nil
	}

	if err := h.accountService.Disconnect(c.Request().Context(), account); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Account disconnected"})
}

// Delete godoc
// @Summary Delete an account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]string
// @Router /accounts/{id} [delete]
// @Security ApiKeyAuth
func (h *AccountHandler) Delete(c echo.Context) error {
	account, ok := h.resolveAccount(c)
	if !ok {
		return nil
	}

	if err := h.accountService.Delete(c.Request().Context(), account); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Account deleted"})
}

// resolveAccount loads the path account scoped to the caller's
// workspace, writing the error response itself when resolution fails
func (h *AccountHandler) resolveAccount(c echo.Context) (*models.Account, bool) {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
		return nil, false
	}

	account, err := h.accountRepo.GetByIDAndWorkspace(id, workspaceID)
	if err != nil {
		c.JSON(http.StatusNotFound, map[string]string{"error": "Account not found"})
		return nil, false
	}
	return account, true
}
