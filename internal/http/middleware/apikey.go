package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// HashAPIKey derives the stored digest for an API key. Keys are stored
// hashed; the plaintext only exists in the client's hands.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuth resolves the calling workspace from the X-API-Key header
// (or a Bearer token) and stores it in the request context
func APIKeyAuth(workspaceRepo *repo.WorkspaceRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				authHeader := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					key = authHeader[7:]
				}
			}
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing API key")
			}

			workspace, apiKey, err := workspaceRepo.GetByAPIKeyHash(HashAPIKey(key))
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
				}
				log.Error().Err(err).Msg("api key lookup failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Authentication unavailable")
			}

			if !workspace.IsActive {
				return echo.NewHTTPError(http.StatusForbidden, "Workspace is disabled")
			}

			c.Set("workspace", workspace)
			c.Set("workspace_id", workspace.ID)
			c.Set("api_key_id", apiKey.ID)

			if err := workspaceRepo.TouchAPIKey(apiKey.ID); err != nil {
				log.Debug().Err(err).Msg("failed to touch api key")
			}

			return next(c)
		}
	}
}

// WorkspaceFromContext returns the authenticated workspace set by
// APIKeyAuth
func WorkspaceFromContext(c echo.Context) *models.Workspace {
	workspace, _ := c.Get("workspace").(*models.Workspace)
	return workspace
}
