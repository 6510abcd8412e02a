package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	agentmodel "github.com/potentiacredential-cmd/listentbh/internal/model/agent"
	"github.com/potentiacredential-cmd/listentbh/internal/config"
	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
)

// Service generates agent completions through a compiled eino chain. It is
// the sole blocking collaborator in the request path, so every call is
// bounded by the configured timeout.
type Service struct {
	chatModel model.ChatModel
	agents    agentmodel.Store
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	prompts   *AgentPromptManager
}

// NewService creates the AI service from configuration.
func NewService(ctx context.Context, agents agentmodel.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		agents:    agents,
		cfg:       cfg,
		chain:     runnable,
		prompts:   NewAgentPromptManager(),
	}, nil
}

// GetChatModel exposes the underlying chat model for services that compile
// their own chains.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// Reply produces one raw completion for the given agent persona. The full
// completion is returned as-is; chunking into paced messages happens at the
// caller.
func (s *Service) Reply(ctx context.Context, sessionID, agentID string, history []journal.Message, userMessage string) (string, error) {
	agent, ok := s.agents.FindByID(agentID)
	if !ok {
		return "", fmt.Errorf("unknown agent %q", agentID)
	}

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input := map[string]any{
		"system":  s.prompts.BuildSystemPrompt(&agent),
		"history": s.buildHistoryMessages(history),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated completion for session=%s, agent=%s, length=%d", sessionID, agent.ID, len(response.Content))
	return response.Content, nil
}

func (s *Service) buildHistoryMessages(messages []journal.Message) []*schema.Message {
	historyLimit := s.cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 10
	}

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case journal.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case journal.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
