package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Client OpenRouter API 客戶端
// 單次呼叫的期限由 config.OpenRouter.Timeout 控制，重試策略歸呼叫端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://pantryip.app").
		SetHeader("X-Title", "PantryIP")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Complete 發送一次 chat completion 請求並回傳模型的文字輸出
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	timeout := c.config.OpenRouter.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	req := &Request{
		Model:       c.config.OpenRouter.Model,
		Messages:    messages,
		MaxTokens:   c.config.OpenRouter.MaxTokens,
		Temperature: 0.3,
		TopP:        0.9,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Int("max_tokens", req.MaxTokens),
	)

	started := time.Now()
	resp, err := c.client.R().
		SetContext(reqCtx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", req.Model),
		)
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", req.Model),
			zap.String("response", common.TruncateString(resp.String(), 500)),
		)
		return "", fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), common.TruncateString(resp.String(), 500))
	}

	var response Response
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		common.LogError("Failed to parse AI service response",
			zap.Error(err),
			zap.String("model", req.Model),
		)
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	content := response.Choices[0].Message.Content
	if len(content) == 0 {
		return "", fmt.Errorf("empty content in response")
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", response.Usage.TotalTokens),
		zap.Duration("耗時", time.Since(started)),
	)
	return content, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
