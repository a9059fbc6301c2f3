package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/model/chat"
)

const historyLimit = 10

// Service produces Oceanic Copilot replies through an eino chain.
type Service struct {
	chatModel    model.ChatModel
	chain        compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
	streaming    bool
}

// NewService compiles the prompt chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, actions []action.QuickAction, streaming bool) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
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
		return nil, fmt.Errorf("failed to compile copilot chain: %w", err)
	}

	return &Service{
		chatModel:    chatModel,
		chain:        runnable,
		systemPrompt: DefaultPromptTemplate().BuildSystemPrompt(actions),
		streaming:    streaming,
	}, nil
}

// NewTemplateService is NewService over a TemplateModel.
func NewTemplateService(ctx context.Context, picker Picker, streaming bool) (*Service, error) {
	return NewService(ctx, NewTemplateModel(picker), action.Seed(), streaming)
}

// StreamingEnabled 指示是否开启流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.streaming
}

// GetChatModel 返回底层的聊天模型
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// Reply generates the assistant answer to query given the prior conversation.
func (s *Service) Reply(ctx context.Context, history []chat.Turn, query string, opts ...model.Option) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, query), compose.WithChatModelOption(opts...))
	if err != nil {
		return "", fmt.Errorf("failed to run copilot chain: %w", err)
	}
	if response == nil {
		return "", fmt.Errorf("copilot chain returned no message")
	}
	return response.Content, nil
}

// StreamReply is Reply delivering partial content through onDelta as it is produced.
// It returns the full reply once the stream ends.
func (s *Service) StreamReply(ctx context.Context, history []chat.Turn, query string, onDelta func(string), opts ...model.Option) (string, error) {
	if !s.streaming {
		text, err := s.Reply(ctx, history, query, opts...)
		if err != nil {
			return "", err
		}
		if onDelta != nil {
			onDelta(text)
		}
		return text, nil
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(history, query), compose.WithChatModelOption(opts...))
	if err != nil {
		return "", fmt.Errorf("failed to stream copilot chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 16)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", fmt.Errorf("copilot stream recv failed: %w", recvErr)
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return "", fmt.Errorf("copilot stream produced no content")
	}

	merged, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("concat copilot chunks failed: %w", err)
	}

	log.Printf("[ai] streamed reply chunks=%d length=%d", len(chunks), len(merged.Content))
	return merged.Content, nil
}

func (s *Service) buildChainInput(history []chat.Turn, query string) map[string]any {
	return map[string]any{
		"system":  s.systemPrompt,
		"history": buildHistoryMessages(history),
		"query":   query,
	}
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}

	return history
}
