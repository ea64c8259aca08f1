package handlers

import (
	"github.com/nurfahmi/wa-gateway/internal/app"
	"github.com/nurfahmi/wa-gateway/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes configures all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Handlers
	workspaceHandler := NewWorkspaceHandler(services.WorkspaceRepo, services.DB, services.AdminToken)
	accountHandler := NewAccountHandler(services.AccountService, services.AccountRepo)
	messageHandler := NewMessageHandler(services.MessageService, services.MessageRepo)
	contactHandler := NewContactHandler(services.ContactRepo)
	templateHandler := NewTemplateHandler(services.TemplateService, services.TemplateRepo)
	ruleHandler := NewAutoReplyRuleHandler(services.RuleRepo)
	aiConfigHandler := NewAIConfigHandler(services.AIConfigRepo, services.ConversationRepo)
	webhookHandler := NewWebhookHandler(services.WebhookRepo, services.WebhookDispatcher)
	scheduledHandler := NewScheduledMessageHandler(services.ScheduledRepo, services.AccountRepo)
	broadcastHandler := NewBroadcastHandler(services.BroadcastRepo, services.AccountRepo)
	providerEventHandler := NewProviderEventHandler(services.EventRouter, services.ProviderToken)
	wsHandler := NewWebSocketHandler(services.Hub, services.WorkspaceRepo)

	// Provider intake (guarded by provider token, not API key)
	api.POST("/provider/events", providerEventHandler.Handle)

	// Dashboard event stream (authenticates via api_key query param)
	api.GET("/ws", wsHandler.Handle)

	// Operator endpoints (guarded by admin token)
	admin := api.Group("/admin")
	admin.GET("/workspaces", workspaceHandler.List)
	admin.POST("/workspaces", workspaceHandler.Create)
	admin.POST("/workspaces/:id/api-keys", workspaceHandler.CreateAPIKey)

	// Workspace API (API key + per-workspace rate limit)
	protected := api.Group("")
	protected.Use(middleware.APIKeyAuth(services.WorkspaceRepo))
	protected.Use(middleware.RateLimit(services.RateLimitService))

	// Accounts
	protected.GET("/accounts", accountHandler.List)
	protected.POST("/accounts", accountHandler.Create)
	protected.GET("/accounts/:id", accountHandler.GetByID)
	protected.GET("/accounts/:id/qr", accountHandler.GetQR)
	protected.GET("/accounts/:id/status", accountHandler.GetStatus)
	protected.POST("/accounts/:id/disconnect", accountHandler.Disconnect)
	protected.DELETE("/accounts/:id", accountHandler.Delete)

	// Messages
	protected.POST("/messages", messageHandler.Send)
	protected.GET("/messages", messageHandler.List)
	protected.GET("/messages/stats", messageHandler.Stats)
	protected.GET("/messages/:id", messageHandler.GetByID)

	// Contacts
	protected.GET("/contacts", contactHandler.List)
	protected.POST("/contacts", contactHandler.Create)
	protected.GET("/contacts/stats", contactHandler.Stats)
	protected.POST("/contacts/import", contactHandler.Import)
	protected.GET("/contacts/export", contactHandler.Export)
	protected.GET("/contacts/:id", contactHandler.GetByID)
	protected.PUT("/contacts/:id", contactHandler.Update)
	protected.DELETE("/contacts/:id", contactHandler.Delete)

	// Message templates
	protected.GET("/templates", templateHandler.List)
	protected.POST("/templates", templateHandler.Create)
	protected.GET("/templates/:id", templateHandler.GetByID)
	protected.PUT("/templates/:id", templateHandler.Update)
	protected.DELETE("/templates/:id", templateHandler.Delete)
	protected.POST("/templates/:id/render", templateHandler.Render)

	// Auto-reply rules
	protected.GET("/auto-reply/rules", ruleHandler.List)
	protected.POST("/auto-reply/rules", ruleHandler.Create)
	protected.GET("/auto-reply/rules/:id", ruleHandler.GetByID)
	protected.PUT("/auto-reply/rules/:id", ruleHandler.Update)
	protected.DELETE("/auto-reply/rules/:id", ruleHandler.Delete)

	// AI configuration
	protected.GET("/ai/config", aiConfigHandler.Get)
	protected.PUT("/ai/config", aiConfigHandler.Upsert)
	protected.DELETE("/ai/memory/:phone", aiConfigHandler.ClearMemory)

	// Webhook configuration
	protected.GET("/webhooks", webhookHandler.Get)
	protected.PUT("/webhooks", webhookHandler.Upsert)
	protected.DELETE("/webhooks", webhookHandler.Delete)
	protected.POST("/webhooks/test", webhookHandler.Test)
	protected.POST("/webhooks/enable", webhookHandler.Enable)

	// Scheduled messages
	protected.GET("/scheduled-messages", scheduledHandler.List)
	protected.POST("/scheduled-messages", scheduledHandler.Create)
	protected.GET("/scheduled-messages/:id", scheduledHandler.GetByID)
	protected.POST("/scheduled-messages/:id/cancel", scheduledHandler.Cancel)

	// Broadcasts
	protected.GET("/broadcasts", broadcastHandler.List)
	protected.POST("/broadcasts", broadcastHandler.Create)
	protected.GET("/broadcasts/:id", broadcastHandler.GetByID)
	protected.PUT("/broadcasts/:id", broadcastHandler.Update)
	protected.POST("/broadcasts/:id/schedule", broadcastHandler.Schedule)
	protected.DELETE("/broadcasts/:id", broadcastHandler.Delete)
}
