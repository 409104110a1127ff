package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Message 對話訊息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request chat completions 請求
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat 要求模型輸出 JSON
type ResponseFormat struct {
	Type string `json:"type"`
}

// Response chat completions 回應
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 候選回應
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo token 使用量
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// apiError 服務端錯誤格式
type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// Client OpenAI 相容的 chat completions 用戶端
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// NewClient 建立用戶端
func NewClient(cfg config.GeneratorConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://chuckle-and-chow.onrender.com").
		SetHeader("X-Title", "Chuckle & Chow")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Client{http: rc, model: cfg.Model, maxTokens: maxTokens}
}

// Model 使用中的模型
func (c *Client) Model() string {
	return c.model
}

// Complete 送出 system 與 user 訊息，回傳第一個候選的內容
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    0.7,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	start := time.Now()
	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		common.LogError("Failed to send request to AI service", zap.Error(err), zap.String("model", req.Model))
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if !resp.IsSuccess() {
		var apiErr apiError
		msg := resp.String()
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", req.Model),
			zap.String("response", msg),
		)
		return "", fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), msg)
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}
	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return content, nil
}
