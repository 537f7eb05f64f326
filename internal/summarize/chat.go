package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kbukum/podscribe/internal/apperrors"
)

const (
	// ChatProviderName is the registered name for the chat-completion backend.
	ChatProviderName = "chat"

	defaultChatURL     = "http://localhost:11434"
	defaultChatModel   = "llama3"
	defaultChatTimeout = 2 * time.Minute
)

// ChatConfig holds configuration for the chat-completion backend.
type ChatConfig struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Temperature float64       `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Chat implements Provider using an Ollama-compatible /api/chat endpoint.
type Chat struct {
	cfg    ChatConfig
	client *http.Client
}

// NewChat creates a new chat-completion backend.
func NewChat(cfg ChatConfig) *Chat {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultChatURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultChatModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultChatTimeout
	}
	return &Chat{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (c *Chat) Name() string { return ChatProviderName }

// IsAvailable checks if the backend is reachable.
func (c *Chat) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a non-streaming chat request.
func (c *Chat) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := c.cfg.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	chatReq := chatRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   false,
		Options: chatOptions{
			Temperature: temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("summarize: marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("summarize: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalService("language model", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, apperrors.ExternalService("language model",
			fmt.Errorf("status %d: %s", httpResp.StatusCode, string(respBody)))
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("summarize: decode chat response: %w", err)
	}

	return &CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
	}, nil
}

// --- internal chat API types ---

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
}
