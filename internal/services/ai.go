package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ErrAIUnavailable is returned when no AI backend is configured
var ErrAIUnavailable = errors.New("ai backend not configured")

// chatCompleter abstracts the OpenAI chat API for testing
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// conversationStore persists and replays AI conversation turns
type conversationStore interface {
	Append(turn *models.ConversationLog) error
	History(workspaceID, accountID uuid.UUID, contactPhone string, n int) ([]models.ConversationLog, error)
}

// AIService generates auto-replies with an LLM when no rule matched
type AIService struct {
	client           chatCompleter
	conversationRepo conversationStore
}

// NewAIService creates a new AI service. With an empty API key the
// service stays up but every generation fails with ErrAIUnavailable,
// letting callers fall back gracefully.
func NewAIService(apiKey string, conversationRepo conversationStore) *AIService {
	var client chatCompleter
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &AIService{client: client, conversationRepo: conversationRepo}
}

// NewAIServiceWithClient wires a custom chat backend, used by tests
func NewAIServiceWithClient(client chatCompleter, conversationRepo conversationStore) *AIService {
	return &AIService{client: client, conversationRepo: conversationRepo}
}

// GenerateReply produces an assistant reply for an inbound message,
// replaying recent conversation memory when the config enables it.
// Successful exchanges are appended to the conversation log.
func (s *AIService) GenerateReply(ctx context.Context, cfg *models.AIConfig, workspaceID, accountID uuid.UUID, contactPhone, text string) (string, error) {
	if s.client == nil {
		return "", ErrAIUnavailable
	}

	messages := []openai.ChatCompletionMessage{}
	if cfg.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: cfg.SystemPrompt,
		})
	}

	if cfg.MemoryEnabled && cfg.MemoryMessages > 0 {
		history, err := s.conversationRepo.History(workspaceID, accountID, contactPhone, cfg.MemoryMessages)
		if err != nil {
			log.Warn().Err(err).Str("contact", contactPhone).Msg("failed to load conversation memory")
		}
		for _, turn := range history {
			role := openai.ChatMessageRoleUser
			if turn.Role == models.ConversationRoleAssistant {
				role = openai.ChatMessageRoleAssistant
			}
			messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
		}
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	s.remember(workspaceID, accountID, contactPhone, models.ConversationRoleUser, text)
	s.remember(workspaceID, accountID, contactPhone, models.ConversationRoleAssistant, reply)
	return reply, nil
}

func (s *AIService) remember(workspaceID, accountID uuid.UUID, contactPhone, role, content string) {
	turn := &models.ConversationLog{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AccountID:          accountID,
		ContactPhone:       contactPhone,
		Role:               role,
		Content:            content,
	}
	if err := s.conversationRepo.Append(turn); err != nil {
		log.Warn().Err(err).Str("contact", contactPhone).Msg("failed to append conversation turn")
	}
}
