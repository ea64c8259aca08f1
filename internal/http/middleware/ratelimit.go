package middleware

import (
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/services"

	"github.com/labstack/echo/v4"
)

// RateLimit enforces the workspace's per-minute request budget. It must
// run after APIKeyAuth; without a workspace in context it passes the
// request through untouched.
func RateLimit(limiter *services.RateLimitService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			workspace := WorkspaceFromContext(c)
			if workspace == nil {
				return next(c)
			}

			decision := limiter.Allow(workspace.ID, workspace.RateLimitPerMinute)

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}
