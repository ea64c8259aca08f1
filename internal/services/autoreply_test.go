package services

import (
	"errors"
	"testing"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
)

func ruleWith(triggerType, triggerValue string) *models.AutoReplyRule {
	return &models.AutoReplyRule{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New()},
		TriggerType:        triggerType,
		TriggerValue:       triggerValue,
		IsActive:           true,
	}
}

func TestRuleMatches(t *testing.T) {
	// 2024-01-01 10:00 is a Monday morning
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule *models.AutoReplyRule
		mc   MatchContext
		want bool
	}{
		{"keyword hit", ruleWith(models.TriggerKeyword, "price,harga"), MatchContext{Text: "what is the PRICE?", Now: now}, true},
		{"keyword second entry", ruleWith(models.TriggerKeyword, "price,harga"), MatchContext{Text: "berapa harga nya", Now: now}, true},
		{"keyword miss", ruleWith(models.TriggerKeyword, "price,harga"), MatchContext{Text: "hello there", Now: now}, false},
		{"keyword ignores empty entries", ruleWith(models.TriggerKeyword, ",,"), MatchContext{Text: "anything", Now: now}, false},
		{"contains behaves like keyword", ruleWith(models.TriggerContains, "order"), MatchContext{Text: "my ORDER is late", Now: now}, true},
		{"exact match case insensitive", ruleWith(models.TriggerExactMatch, "Menu"), MatchContext{Text: "  menu  ", Now: now}, true},
		{"exact match rejects substring", ruleWith(models.TriggerExactMatch, "menu"), MatchContext{Text: "show menu please", Now: now}, false},
		{"regex match", ruleWith(models.TriggerRegex, `^order\s+#\d+$`), MatchContext{Text: "Order #123", Now: now}, true},
		{"regex is case insensitive", ruleWith(models.TriggerRegex, "hello"), MatchContext{Text: "HELLO there", Now: now}, true},
		{"regex miss", ruleWith(models.TriggerRegex, `^bye$`), MatchContext{Text: "goodbye", Now: now}, false},
		{"invalid regex never matches", ruleWith(models.TriggerRegex, `([`), MatchContext{Text: "anything", Now: now}, false},
		{"welcome first contact", ruleWith(models.TriggerWelcome, ""), MatchContext{Text: "hi", IsFirstContact: true, Now: now}, true},
		{"welcome returning contact", ruleWith(models.TriggerWelcome, ""), MatchContext{Text: "hi", IsFirstContact: false, Now: now}, false},
		{"fallback always matches", ruleWith(models.TriggerFallback, ""), MatchContext{Text: "anything at all", Now: now}, true},
		{"unknown trigger type", ruleWith("mystery", ""), MatchContext{Text: "hi", Now: now}, false},
	}

	for _, test := range tests {
		if got := RuleMatches(test.rule, test.mc); got != test.want {
			t.Errorf("%s: RuleMatches = %v, expected %v", test.name, got, test.want)
		}
	}
}

func TestRuleMatchesBusinessHoursTrigger(t *testing.T) {
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)
	schedule := models.BusinessHoursSchedule{"monday": {"09:00-17:00"}}

	inside := ruleWith(models.TriggerBusinessHours, "")
	inside.Conditions = models.RuleConditions{BusinessHours: schedule}

	outside := ruleWith(models.TriggerBusinessHours, "")
	outside.Conditions = models.RuleConditions{BusinessHours: schedule, OutsideHours: true}

	if !RuleMatches(inside, MatchContext{Now: monday}) {
		t.Error("schedule trigger should match inside hours")
	}
	if RuleMatches(inside, MatchContext{Now: saturday}) {
		t.Error("schedule trigger should not match outside hours")
	}
	if RuleMatches(outside, MatchContext{Now: monday}) {
		t.Error("outside_hours trigger should not match inside hours")
	}
	if !RuleMatches(outside, MatchContext{Now: saturday}) {
		t.Error("outside_hours trigger should match outside hours")
	}
}

func TestRuleMatchesScheduleCondition(t *testing.T) {
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)

	rule := ruleWith(models.TriggerKeyword, "help")
	rule.Conditions = models.RuleConditions{
		BusinessHours: models.BusinessHoursSchedule{"monday": {"09:00-17:00"}},
	}

	if !RuleMatches(rule, MatchContext{Text: "help me", Now: monday}) {
		t.Error("keyword rule should match during its schedule window")
	}
	if RuleMatches(rule, MatchContext{Text: "help me", Now: saturday}) {
		t.Error("keyword rule should be suppressed outside its schedule window")
	}

	rule.Conditions.OutsideHours = true
	if RuleMatches(rule, MatchContext{Text: "help me", Now: monday}) {
		t.Error("outside_hours condition should suppress the rule during hours")
	}
	if !RuleMatches(rule, MatchContext{Text: "help me", Now: saturday}) {
		t.Error("outside_hours condition should allow the rule after hours")
	}
}

type fakeTriggerCounter struct {
	counts map[uuid.UUID]int
	err    error
}

func (f *fakeTriggerCounter) GetTriggerCount(ruleID uuid.UUID, contactPhone string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[ruleID], nil
}

func TestFindMatchingRulePriorityOrder(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// The repository returns rules pre-ordered by priority; the first
	// match wins even when later rules also match.
	high := *ruleWith(models.TriggerKeyword, "order")
	low := *ruleWith(models.TriggerFallback, "")

	counter := &fakeTriggerCounter{counts: map[uuid.UUID]int{}}
	got := FindMatchingRule([]models.AutoReplyRule{high, low}, MatchContext{Text: "order status", Now: now}, "628111", counter)
	if got == nil || got.ID != high.ID {
		t.Fatal("expected the first matching rule to win")
	}

	got = FindMatchingRule([]models.AutoReplyRule{high, low}, MatchContext{Text: "hello", Now: now}, "628111", counter)
	if got == nil || got.ID != low.ID {
		t.Fatal("expected the fallback rule when the keyword misses")
	}
}

func TestFindMatchingRuleTriggerCap(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	cap := 2

	capped := *ruleWith(models.TriggerKeyword, "promo")
	capped.MaxTriggersPerContact = &cap
	fallback := *ruleWith(models.TriggerFallback, "")

	rules := []models.AutoReplyRule{capped, fallback}
	mc := MatchContext{Text: "promo please", Now: now}

	counter := &fakeTriggerCounter{counts: map[uuid.UUID]int{capped.ID: 1}}
	if got := FindMatchingRule(rules, mc, "628111", counter); got == nil || got.ID != capped.ID {
		t.Fatal("rule under its cap should still fire")
	}

	counter.counts[capped.ID] = 2
	if got := FindMatchingRule(rules, mc, "628111", counter); got == nil || got.ID != fallback.ID {
		t.Fatal("exhausted rule should yield to the next match")
	}
}

func TestFindMatchingRuleCounterFailureIsBestEffort(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	cap := 1

	capped := *ruleWith(models.TriggerKeyword, "promo")
	capped.MaxTriggersPerContact = &cap

	counter := &fakeTriggerCounter{err: errors.New("store down")}
	got := FindMatchingRule([]models.AutoReplyRule{capped}, MatchContext{Text: "promo", Now: now}, "628111", counter)
	if got == nil {
		t.Fatal("counter failure should not suppress a matching rule")
	}
}

func TestFindMatchingRuleNoMatch(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rules := []models.AutoReplyRule{*ruleWith(models.TriggerKeyword, "price")}

	counter := &fakeTriggerCounter{counts: map[uuid.UUID]int{}}
	if got := FindMatchingRule(rules, MatchContext{Text: "hello", Now: now}, "628111", counter); got != nil {
		t.Fatalf("expected no match, got rule %s", got.ID)
	}
}
