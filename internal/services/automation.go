package services

import (
	"context"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Reply sources
const (
	ReplySourceRule     = "rule"
	ReplySourceAI       = "ai"
	ReplySourceFallback = "fallback"
)

// AutoReply is the outcome of an automation decision. A nil AutoReply
// means stay silent.
type AutoReply struct {
	Text         string
	Source       string
	DelaySeconds int
	RuleID       *uuid.UUID
}

// ruleStore provides the ordered rule set and per-contact trigger caps
type ruleStore interface {
	ListActive(workspaceID, accountID uuid.UUID) ([]models.AutoReplyRule, error)
	GetTriggerCount(ruleID uuid.UUID, contactPhone string) (int, error)
	RecordTrigger(workspaceID, ruleID uuid.UUID, contactPhone string) error
}

// aiConfigResolver resolves the effective AI config for an account
type aiConfigResolver interface {
	Resolve(workspaceID, accountID uuid.UUID) (*models.AIConfig, error)
}

// replyGenerator produces an LLM reply for an inbound message
type replyGenerator interface {
	GenerateReply(ctx context.Context, cfg *models.AIConfig, workspaceID, accountID uuid.UUID, contactPhone, text string) (string, error)
}

// templateResolver loads templates referenced by rules
type templateResolver interface {
	GetByID(id, workspaceID uuid.UUID) (*models.MessageTemplate, error)
	IncrementUsage(id uuid.UUID) error
}

// AutomationService decides how to respond to an inbound message:
// rules first, AI as fallback, silence when neither applies.
type AutomationService struct {
	ruleRepo     ruleStore
	aiConfigRepo aiConfigResolver
	ai           replyGenerator
	templateRepo templateResolver
	now          func() time.Time
}

// NewAutomationService creates a new automation service
func NewAutomationService(ruleRepo ruleStore, aiConfigRepo aiConfigResolver, ai replyGenerator, templateRepo templateResolver) *AutomationService {
	return &AutomationService{
		ruleRepo:     ruleRepo,
		aiConfigRepo: aiConfigRepo,
		ai:           ai,
		templateRepo: templateRepo,
		now:          time.Now,
	}
}

// Decide evaluates rules then AI for an inbound message. Store failures
// degrade to the next stage rather than erroring the event out: a
// broken rule lookup still lets AI answer, and a broken AI backend
// falls back to the configured message or silence.
func (s *AutomationService) Decide(ctx context.Context, account *models.Account, contact *models.Contact, text string, isFirstContact bool) *AutoReply {
	now := s.now()

	rules, err := s.ruleRepo.ListActive(account.WorkspaceID, account.ID)
	if err != nil {
		log.Error().Err(err).Str("account_id", account.ID.String()).Msg("failed to list auto-reply rules")
	}

	mc := MatchContext{Text: text, IsFirstContact: isFirstContact, Now: now}
	if rule := FindMatchingRule(rules, mc, contact.PhoneNumber, s.ruleRepo); rule != nil {
		if err := s.ruleRepo.RecordTrigger(account.WorkspaceID, rule.ID, contact.PhoneNumber); err != nil {
			log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("failed to record rule trigger")
		}
		return &AutoReply{
			Text:         s.resolveReplyText(rule, account.WorkspaceID, contact),
			Source:       ReplySourceRule,
			DelaySeconds: rule.DelaySeconds,
			RuleID:       &rule.ID,
		}
	}

	return s.decideAI(ctx, account, contact, text, now)
}

// resolveReplyText renders the rule's template when one is referenced,
// falling back to the inline reply message
func (s *AutomationService) resolveReplyText(rule *models.AutoReplyRule, workspaceID uuid.UUID, contact *models.Contact) string {
	if rule.ReplyType != models.ReplyTypeTemplate || rule.TemplateID == nil {
		return rule.ReplyMessage
	}

	template, err := s.templateRepo.GetByID(*rule.TemplateID, workspaceID)
	if err != nil {
		log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("failed to load reply template")
		return rule.ReplyMessage
	}

	if err := s.templateRepo.IncrementUsage(template.ID); err != nil {
		log.Warn().Err(err).Str("template_id", template.ID.String()).Msg("failed to bump template usage")
	}

	return RenderTemplate(template.Content, map[string]string{
		"name":  contact.Name,
		"phone": contact.PhoneNumber,
	})
}

func (s *AutomationService) decideAI(ctx context.Context, account *models.Account, contact *models.Contact, text string, now time.Time) *AutoReply {
	cfg, err := s.aiConfigRepo.Resolve(account.WorkspaceID, account.ID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error().Err(err).Str("account_id", account.ID.String()).Msg("failed to resolve ai config")
		}
		return nil
	}

	if !cfg.IsEnabled || !cfg.AutoReplyEnabled {
		return nil
	}
	// An unconfigured schedule does not gate; the restriction only
	// applies once hours are actually set.
	if cfg.BusinessHoursOnly && len(cfg.BusinessHours) > 0 && !WithinBusinessHours(cfg.BusinessHours, now) {
		return nil
	}

	reply, err := s.ai.GenerateReply(ctx, cfg, account.WorkspaceID, account.ID, contact.PhoneNumber, text)
	if err != nil {
		if err != ErrAIUnavailable {
			log.Error().Err(err).Str("contact", contact.PhoneNumber).Msg("ai reply generation failed")
		}
		if cfg.FallbackMessage == "" {
			return nil
		}
		return &AutoReply{
			Text:         cfg.FallbackMessage,
			Source:       ReplySourceFallback,
			DelaySeconds: cfg.ReplyDelaySeconds,
		}
	}

	return &AutoReply{
		Text:         reply,
		Source:       ReplySourceAI,
		DelaySeconds: cfg.ReplyDelaySeconds,
	}
}
