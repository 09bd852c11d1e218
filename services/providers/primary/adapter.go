// Package primary implements the primary provider executor. It speaks
// the OpenAI-compatible chat-completions wire and serves text-only
// traffic in whichever gear model the caller resolves.
package primary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/services/providers"
)

// Adapter implements providers.Provider for the primary vendor.
type Adapter struct {
	cfg        config.PrimaryConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a primary adapter. It fails explicitly when no API key is
// configured rather than returning a client that errors on first use.
func New(cfg config.PrimaryConfig, logger *zap.Logger) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("primary provider: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultPrimaryBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Identity implements providers.Provider.
func (a *Adapter) Identity() providers.Identity {
	return providers.Primary
}

// Available implements providers.Provider.
func (a *Adapter) Available() bool {
	return a.cfg.APIKey != ""
}

// DefaultModel returns the high-gear model. Gear-aware callers resolve
// the actual model through the gear controller instead.
func (a *Adapter) DefaultModel() string {
	return a.cfg.HighGearModel
}

// chatRequest is the upstream wire request.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type     string                    `json:"type"`
	Function providers.ToolDeclaration `json:"function"`
}

// chatResponse is the upstream wire response.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage providers.Usage `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete implements providers.Provider.
func (a *Adapter) Complete(ctx context.Context, req *providers.Request, model string) (*providers.Response, error) {
	start := time.Now()

	wireReq := chatRequest{
		Model:    model,
		Messages: make([]chatMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		wireReq.Messages = append(wireReq.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	for _, t := range req.Tools {
		wireReq.Tools = append(wireReq.Tools, chatTool{Type: "function", Function: t})
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Identity(), 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.Identity(), 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Identity(), 0, "request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Identity(), httpResp.StatusCode, "failed to read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.errorFromResponse(httpResp.StatusCode, respBody)
	}

	var wireResp chatResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return nil, providers.NewProviderError(a.Identity(), httpResp.StatusCode, "failed to unmarshal response", err)
	}
	if len(wireResp.Choices) == 0 {
		return nil, providers.NewProviderError(a.Identity(), httpResp.StatusCode, "response contained no choices", nil)
	}

	respModel := wireResp.Model
	if respModel == "" {
		respModel = model
	}

	a.logger.Debug("primary completion",
		zap.String("request_id", req.ID),
		zap.String("model", respModel),
		zap.Int("total_tokens", wireResp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)))

	return &providers.Response{
		ID:       wireResp.ID,
		Provider: providers.Primary,
		Model:    respModel,
		Content:  wireResp.Choices[0].Message.Content,
		Raw:      respBody,
		Usage:    wireResp.Usage,
		Latency:  time.Since(start),
	}, nil
}

// errorFromResponse keeps the vendor's message text intact so the
// failure classifier can match on it.
func (a *Adapter) errorFromResponse(statusCode int, body []byte) error {
	var wireErr errorResponse
	if err := json.Unmarshal(body, &wireErr); err == nil && wireErr.Error.Message != "" {
		return providers.NewProviderError(a.Identity(), statusCode,
			fmt.Sprintf("upstream error (status %d): %s", statusCode, wireErr.Error.Message), nil)
	}
	return providers.NewProviderError(a.Identity(), statusCode,
		fmt.Sprintf("upstream error (status %d): %s", statusCode, string(body)), nil)
}
