package app

import (
	"os"

	"github.com/nurfahmi/wa-gateway/internal/provider"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/services"
	"github.com/nurfahmi/wa-gateway/internal/ws"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Services holds all application services and repositories
type Services struct {
	DB *gorm.DB

	// Repositories
	WorkspaceRepo    *repo.WorkspaceRepository
	AccountRepo      *repo.AccountRepository
	ContactRepo      *repo.ContactRepository
	MessageRepo      *repo.MessageLogRepository
	RuleRepo         *repo.AutoReplyRuleRepository
	AIConfigRepo     *repo.AIConfigRepository
	ConversationRepo *repo.ConversationLogRepository
	ScheduledRepo    *repo.ScheduledMessageRepository
	BroadcastRepo    *repo.BroadcastRepository
	WebhookRepo      *repo.WebhookConfigRepository
	RateLimitRepo    *repo.RateLimitRepository
	TemplateRepo     *repo.TemplateRepository

	// Infrastructure
	Registry *provider.Registry
	Hub      *ws.Hub

	// Services
	MessageService    *services.MessageService
	AccountService    *services.AccountService
	TemplateService   *services.TemplateService
	AIService         *services.AIService
	AutomationService *services.AutomationService
	WebhookDispatcher *services.WebhookDispatcher
	RateLimitService  *services.RateLimitService
	EventRouter       *services.EventRouter
	SchedulerService  *services.SchedulerService

	// Tokens for the operator and provider surfaces
	AdminToken    string
	ProviderToken string
}

// NewServices creates and wires all application services
func NewServices(db *gorm.DB) *Services {
	workspaceRepo := repo.NewWorkspaceRepository(db)
	accountRepo := repo.NewAccountRepository(db)
	contactRepo := repo.NewContactRepository(db)
	messageRepo := repo.NewMessageLogRepository(db)
	ruleRepo := repo.NewAutoReplyRuleRepository(db)
	aiConfigRepo := repo.NewAIConfigRepository(db)
	conversationRepo := repo.NewConversationLogRepository(db)
	scheduledRepo := repo.NewScheduledMessageRepository(db)
	broadcastRepo := repo.NewBroadcastRepository(db)
	webhookRepo := repo.NewWebhookConfigRepository(db)
	rateLimitRepo := repo.NewRateLimitRepository(db)
	templateRepo := repo.NewTemplateRepository(db)

	registry := provider.NewRegistry()
	registry.Register("baileys", provider.NewBaileysProvider())

	hub := ws.NewHub()

	messageService := services.NewMessageService(registry, accountRepo, messageRepo, contactRepo)
	accountService := services.NewAccountService(registry, accountRepo, workspaceRepo)
	templateService := services.NewTemplateService(templateRepo)

	aiService := services.NewAIService(os.Getenv("OPENAI_API_KEY"), conversationRepo)
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, AI auto-reply disabled")
	}

	automationService := services.NewAutomationService(ruleRepo, aiConfigRepo, aiService, templateRepo)
	webhookDispatcher := services.NewWebhookDispatcher(webhookRepo)
	rateLimitService := services.NewRateLimitService(rateLimitRepo)

	eventRouter := services.NewEventRouter(accountRepo, contactRepo, messageRepo, automationService, messageService, webhookDispatcher, hub)

	schedulerService := services.NewSchedulerService(scheduledRepo, broadcastRepo, contactRepo, messageService, webhookDispatcher, rateLimitService)

	return &Services{
		DB: db,

		WorkspaceRepo:    workspaceRepo,
		AccountRepo:      accountRepo,
		ContactRepo:      contactRepo,
		MessageRepo:      messageRepo,
		RuleRepo:         ruleRepo,
		AIConfigRepo:     aiConfigRepo,
		ConversationRepo: conversationRepo,
		ScheduledRepo:    scheduledRepo,
		BroadcastRepo:    broadcastRepo,
		WebhookRepo:      webhookRepo,
		RateLimitRepo:    rateLimitRepo,
		TemplateRepo:     templateRepo,

		Registry: registry,
		Hub:      hub,

		MessageService:    messageService,
		AccountService:    accountService,
		TemplateService:   templateService,
		AIService:         aiService,
		AutomationService: automationService,
		WebhookDispatcher: webhookDispatcher,
		RateLimitService:  rateLimitService,
		EventRouter:       eventRouter,
		SchedulerService:  schedulerService,

		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		ProviderToken: os.Getenv("PROVIDER_TOKEN"),
	}
}
