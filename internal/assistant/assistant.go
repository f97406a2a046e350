package assistant

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/handler"
)

// DefaultPrompt is the system prompt used when none is configured.
const DefaultPrompt = "You are a friendly assistant replying to LINE chat messages. Keep answers short and plain text; no markdown."

// maxReplyRunes keeps replies within LINE's 5000 character text limit.
const maxReplyRunes = 5000

// Handler answers text messages with an OpenAI chat completion.
type Handler struct {
	handler.Base
	client *openai.Client
	model  string
	prompt string
}

// Config configures the assistant.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible endpoints
	Prompt  string
}

// New creates an assistant handler.
func New(cfg Config) *Handler {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Handler{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		prompt: prompt,
	}
}

func (h *Handler) HandleText(ctx context.Context, msg *domain.TextMessage) (string, error) {
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: h.prompt},
			{Role: openai.ChatMessageRoleUser, Content: msg.Text},
		},
		User: msg.UserID,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return truncate(strings.TrimSpace(resp.Choices[0].Message.Content), maxReplyRunes), nil
}

func (h *Handler) HandleImage(context.Context, *domain.ImageMessage) (string, error) {
	return "I can only read text for now, but thanks for the picture!", nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
