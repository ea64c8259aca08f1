package services

import (
	"context"
	"testing"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

type fakeChatCompleter struct {
	reply   string
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

type fakeConversationStore struct {
	history  []models.ConversationLog
	appended []models.ConversationLog
}

func (f *fakeConversationStore) Append(turn *models.ConversationLog) error {
	f.appended = append(f.appended, *turn)
	return nil
}

func (f *fakeConversationStore) History(workspaceID, accountID uuid.UUID, contactPhone string, n int) ([]models.ConversationLog, error) {
	return f.history, nil
}

func TestGenerateReplyUnconfigured(t *testing.T) {
	s := NewAIService("", &fakeConversationStore{})

	_, err := s.GenerateReply(context.Background(), &models.AIConfig{}, uuid.New(), uuid.New(), "628111", "hi")
	if err != ErrAIUnavailable {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestGenerateReplyBuildsPromptAndRemembers(t *testing.T) {
	client := &fakeChatCompleter{reply: "generated"}
	conversations := &fakeConversationStore{
		history: []models.ConversationLog{
			{Role: models.ConversationRoleUser, Content: "earlier question"},
			{Role: models.ConversationRoleAssistant, Content: "earlier answer"},
		},
	}
	s := NewAIServiceWithClient(client, conversations)

	cfg := &models.AIConfig{
		Model:          "gpt-4",
		SystemPrompt:   "You are a store assistant",
		MemoryEnabled:  true,
		MemoryMessages: 10,
		Temperature:    0.5,
		MaxTokens:      200,
	}

	reply, err := s.GenerateReply(context.Background(), cfg, uuid.New(), uuid.New(), "628111", "is it in stock?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "generated" {
		t.Errorf("reply = %q", reply)
	}

	// system + 2 memory turns + user message
	if len(client.lastReq.Messages) != 4 {
		t.Fatalf("prompt has %d messages, expected 4", len(client.lastReq.Messages))
	}
	if client.lastReq.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Error("first message should be the system prompt")
	}
	if client.lastReq.Messages[2].Role != openai.ChatMessageRoleAssistant {
		t.Error("assistant memory turns should map to the assistant role")
	}
	if last := client.lastReq.Messages[3]; last.Role != openai.ChatMessageRoleUser || last.Content != "is it in stock?" {
		t.Errorf("last message = %+v", last)
	}
	if client.lastReq.Model != "gpt-4" {
		t.Errorf("model = %q", client.lastReq.Model)
	}

	// Both sides of the exchange are remembered
	if len(conversations.appended) != 2 {
		t.Fatalf("appended %d turns, expected 2", len(conversations.appended))
	}
	if conversations.appended[0].Role != models.ConversationRoleUser ||
		conversations.appended[1].Role != models.ConversationRoleAssistant {
		t.Error("exchange should be stored as user then assistant")
	}
}

func TestGenerateReplyMemoryDisabled(t *testing.T) {
	client := &fakeChatCompleter{reply: "ok"}
	conversations := &fakeConversationStore{
		history: []models.ConversationLog{{Role: models.ConversationRoleUser, Content: "old"}},
	}
	s := NewAIServiceWithClient(client, conversations)

	cfg := &models.AIConfig{Model: "gpt-4", MemoryEnabled: false}
	if _, err := s.GenerateReply(context.Background(), cfg, uuid.New(), uuid.New(), "628111", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Just the user message, no memory replay
	if len(client.lastReq.Messages) != 1 {
		t.Errorf("prompt has %d messages, expected 1", len(client.lastReq.Messages))
	}
}
