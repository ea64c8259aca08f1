package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchContext carries the inbound facts rules are evaluated against
type MatchContext struct {
	Text           string
	IsFirstContact bool
	Now            time.Time
}

// RuleMatches evaluates a single rule against an inbound message.
// Keyword lists are comma-separated and matched case-insensitively as
// substrings; regex patterns are likewise case-insensitive. A regex
// that fails to compile never matches.
func RuleMatches(rule *models.AutoReplyRule, mc MatchContext) bool {
	switch rule.TriggerType {
	case models.TriggerBusinessHours:
		within := WithinBusinessHours(rule.Conditions.BusinessHours, mc.Now)
		if rule.Conditions.OutsideHours {
			return !within
		}
		return within

	case models.TriggerWelcome:
		if !mc.IsFirstContact {
			return false
		}

	case models.TriggerKeyword, models.TriggerContains:
		if !containsAnyKeyword(mc.Text, rule.TriggerValue) {
			return false
		}

	case models.TriggerExactMatch:
		if !strings.EqualFold(strings.TrimSpace(mc.Text), strings.TrimSpace(rule.TriggerValue)) {
			return false
		}

	case models.TriggerRegex:
		re, err := regexp.Compile("(?i)" + rule.TriggerValue)
		if err != nil {
			log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("invalid regex trigger")
			return false
		}
		if !re.MatchString(mc.Text) {
			return false
		}

	case models.TriggerFallback:
		// always eligible, subject to schedule conditions below

	default:
		return false
	}

	return scheduleAllows(rule.Conditions, mc.Now)
}

// scheduleAllows applies the optional business-hours condition attached
// to non-schedule trigger types
func scheduleAllows(conditions models.RuleConditions, now time.Time) bool {
	if len(conditions.BusinessHours) == 0 {
		return true
	}
	within := WithinBusinessHours(conditions.BusinessHours, now)
	if conditions.OutsideHours {
		return !within
	}
	return within
}

func containsAnyKeyword(text, triggerValue string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range strings.Split(triggerValue, ",") {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// triggerCounter reads how many times a rule has fired for a contact
type triggerCounter interface {
	GetTriggerCount(ruleID uuid.UUID, contactPhone string) (int, error)
}

// FindMatchingRule walks the pre-ordered rule list and returns the
// first rule that matches and has not exhausted its per-contact cap.
// A counter read failure does not suppress the rule; capping is best
// effort.
func FindMatchingRule(rules []models.AutoReplyRule, mc MatchContext, contactPhone string, counter triggerCounter) *models.AutoReplyRule {
	for i := range rules {
		rule := &rules[i]
		if !RuleMatches(rule, mc) {
			continue
		}

		if rule.MaxTriggersPerContact != nil && *rule.MaxTriggersPerContact > 0 {
			count, err := counter.GetTriggerCount(rule.ID, contactPhone)
			if err != nil {
				log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("failed to read trigger count")
			} else if count >= *rule.MaxTriggersPerContact {
				continue
			}
		}

		return rule
	}
	return nil
}
