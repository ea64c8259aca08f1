package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRuleStore struct {
	rules     []models.AutoReplyRule
	listErr   error
	triggered []uuid.UUID
}

func (f *fakeRuleStore) ListActive(workspaceID, accountID uuid.UUID) ([]models.AutoReplyRule, error) {
	return f.rules, f.listErr
}

func (f *fakeRuleStore) GetTriggerCount(ruleID uuid.UUID, contactPhone string) (int, error) {
	return 0, nil
}

func (f *fakeRuleStore) RecordTrigger(workspaceID, ruleID uuid.UUID, contactPhone string) error {
	f.triggered = append(f.triggered, ruleID)
	return nil
}

type fakeAIConfigStore struct {
	config *models.AIConfig
	err    error
}

func (f *fakeAIConfigStore) Resolve(workspaceID, accountID uuid.UUID) (*models.AIConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.config == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.config, nil
}

type fakeReplyGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeReplyGenerator) GenerateReply(ctx context.Context, cfg *models.AIConfig, workspaceID, accountID uuid.UUID, contactPhone, text string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeTemplateStore struct {
	template *models.MessageTemplate
	usage    int
}

func (f *fakeTemplateStore) GetByID(id, workspaceID uuid.UUID) (*models.MessageTemplate, error) {
	if f.template == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.template, nil
}

func (f *fakeTemplateStore) IncrementUsage(id uuid.UUID) error {
	f.usage++
	return nil
}

func testAccountAndContact() (*models.Account, *models.Contact) {
	account := &models.Account{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New(), WorkspaceID: uuid.New()},
		Status:             models.AccountStatusConnected,
	}
	contact := &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New(), WorkspaceID: account.WorkspaceID},
		PhoneNumber:        "628111",
		Name:               "Budi",
	}
	return account, contact
}

func newTestAutomation(rules *fakeRuleStore, configs *fakeAIConfigStore, ai *fakeReplyGenerator, templates *fakeTemplateStore) *AutomationService {
	s := NewAutomationService(rules, configs, ai, templates)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestDecideRuleWins(t *testing.T) {
	rule := *ruleWith(models.TriggerKeyword, "price")
	rule.ReplyMessage = "Our price list: ..."
	rule.DelaySeconds = 3

	rules := &fakeRuleStore{rules: []models.AutoReplyRule{rule}}
	ai := &fakeReplyGenerator{reply: "ai answer"}
	s := newTestAutomation(rules, &fakeAIConfigStore{}, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "what is the price?", false)

	if reply == nil {
		t.Fatal("expected a rule reply")
	}
	if reply.Source != ReplySourceRule {
		t.Errorf("source = %q, expected rule", reply.Source)
	}
	if reply.Text != rule.ReplyMessage {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.DelaySeconds != 3 {
		t.Errorf("delay = %d, expected 3", reply.DelaySeconds)
	}
	if len(rules.triggered) != 1 || rules.triggered[0] != rule.ID {
		t.Error("matching rule should record a trigger")
	}
	if ai.calls != 0 {
		t.Error("AI should not run when a rule matches")
	}
}

func TestDecideTemplateReply(t *testing.T) {
	templateID := uuid.New()
	rule := *ruleWith(models.TriggerKeyword, "hi")
	rule.ReplyType = models.ReplyTypeTemplate
	rule.TemplateID = &templateID
	rule.ReplyMessage = "inline fallback"

	templates := &fakeTemplateStore{template: &models.MessageTemplate{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: templateID},
		Content:            "Hello {{name}} ({{phone}})",
	}}
	rules := &fakeRuleStore{rules: []models.AutoReplyRule{rule}}
	s := newTestAutomation(rules, &fakeAIConfigStore{}, &fakeReplyGenerator{}, templates)

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hi", false)

	if reply == nil {
		t.Fatal("expected a reply")
	}
	if reply.Text != "Hello Budi (628111)" {
		t.Errorf("text = %q", reply.Text)
	}
	if templates.usage != 1 {
		t.Errorf("template usage = %d, expected 1", templates.usage)
	}
}

func TestDecideTemplateMissingFallsBackToInline(t *testing.T) {
	templateID := uuid.New()
	rule := *ruleWith(models.TriggerKeyword, "hi")
	rule.ReplyType = models.ReplyTypeTemplate
	rule.TemplateID = &templateID
	rule.ReplyMessage = "inline fallback"

	rules := &fakeRuleStore{rules: []models.AutoReplyRule{rule}}
	s := newTestAutomation(rules, &fakeAIConfigStore{}, &fakeReplyGenerator{}, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hi", false)

	if reply == nil || reply.Text != "inline fallback" {
		t.Fatalf("expected inline fallback, got %+v", reply)
	}
}

func TestDecideNoRuleNoConfigIsSilent(t *testing.T) {
	s := newTestAutomation(&fakeRuleStore{}, &fakeAIConfigStore{}, &fakeReplyGenerator{}, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	if reply := s.Decide(context.Background(), account, contact, "hello", false); reply != nil {
		t.Fatalf("expected silence, got %+v", reply)
	}
}

func TestDecideAIDisabledIsSilent(t *testing.T) {
	configs := &fakeAIConfigStore{config: &models.AIConfig{IsEnabled: true, AutoReplyEnabled: false}}
	ai := &fakeReplyGenerator{reply: "should not be used"}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	if reply := s.Decide(context.Background(), account, contact, "hello", false); reply != nil {
		t.Fatalf("expected silence, got %+v", reply)
	}
	if ai.calls != 0 {
		t.Error("AI should not run when auto-reply is disabled")
	}
}

func TestDecideAIReply(t *testing.T) {
	configs := &fakeAIConfigStore{config: &models.AIConfig{
		IsEnabled:         true,
		AutoReplyEnabled:  true,
		ReplyDelaySeconds: 2,
	}}
	ai := &fakeReplyGenerator{reply: "generated answer"}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hello", false)

	if reply == nil {
		t.Fatal("expected an AI reply")
	}
	if reply.Source != ReplySourceAI {
		t.Errorf("source = %q, expected ai", reply.Source)
	}
	if reply.Text != "generated answer" {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.DelaySeconds != 2 {
		t.Errorf("delay = %d, expected 2", reply.DelaySeconds)
	}
}

func TestDecideAIErrorUsesFallbackMessage(t *testing.T) {
	configs := &fakeAIConfigStore{config: &models.AIConfig{
		IsEnabled:        true,
		AutoReplyEnabled: true,
		FallbackMessage:  "An agent will reply shortly",
	}}
	ai := &fakeReplyGenerator{err: errors.New("model overloaded")}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hello", false)

	if reply == nil || reply.Text != "An agent will reply shortly" {
		t.Fatalf("expected fallback message, got %+v", reply)
	}
	if reply.Source != ReplySourceFallback {
		t.Errorf("source = %q, expected fallback", reply.Source)
	}
}

func TestDecideAIErrorWithoutFallbackIsSilent(t *testing.T) {
	configs := &fakeAIConfigStore{config: &models.AIConfig{IsEnabled: true, AutoReplyEnabled: true}}
	ai := &fakeReplyGenerator{err: ErrAIUnavailable}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	if reply := s.Decide(context.Background(), account, contact, "hello", false); reply != nil {
		t.Fatalf("expected silence, got %+v", reply)
	}
}

func TestDecideRuleStoreFailureDegradesToAI(t *testing.T) {
	rules := &fakeRuleStore{listErr: errors.New("db down")}
	configs := &fakeAIConfigStore{config: &models.AIConfig{IsEnabled: true, AutoReplyEnabled: true}}
	ai := &fakeReplyGenerator{reply: "still answering"}
	s := newTestAutomation(rules, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hello", false)

	if reply == nil || reply.Text != "still answering" {
		t.Fatalf("rule store failure should degrade to AI, got %+v", reply)
	}
}

func TestDecideBusinessHoursOnlyGate(t *testing.T) {
	configs := &fakeAIConfigStore{config: &models.AIConfig{
		IsEnabled:         true,
		AutoReplyEnabled:  true,
		BusinessHoursOnly: true,
		// Decide runs at Monday 10:00; only Friday is open
		BusinessHours: models.BusinessHoursSchedule{"friday": {"09:00-17:00"}},
	}}
	ai := &fakeReplyGenerator{reply: "answer"}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	if reply := s.Decide(context.Background(), account, contact, "hello", false); reply != nil {
		t.Fatalf("AI should stay silent outside business hours, got %+v", reply)
	}
	if ai.calls != 0 {
		t.Error("AI should not be invoked outside business hours")
	}
}

func TestDecideBusinessHoursOnlyWithoutScheduleAllows(t *testing.T) {
	// business_hours_only set but no hours configured yet: the gate
	// does not apply until a schedule exists.
	configs := &fakeAIConfigStore{config: &models.AIConfig{
		IsEnabled:         true,
		AutoReplyEnabled:  true,
		BusinessHoursOnly: true,
	}}
	ai := &fakeReplyGenerator{reply: "answer"}
	s := newTestAutomation(&fakeRuleStore{}, configs, ai, &fakeTemplateStore{})

	account, contact := testAccountAndContact()
	reply := s.Decide(context.Background(), account, contact, "hello", false)

	if reply == nil || reply.Text != "answer" {
		t.Fatalf("empty schedule should not gate AI, got %+v", reply)
	}
}
