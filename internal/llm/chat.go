package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// 后端名称
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ChatClient 聊天补全客户端
// 同时支持 Azure OpenAI 部署和 OpenAI 兼容接口，两者只在URL和认证方式上不同
type ChatClient struct {
	provider    string
	endpoint    string // 完整的请求地址
	apiKey      string
	model       string
	httpClient  *http.Client
	maxTokens   int
	temperature float32
}

// NewAzureClient 创建 Azure OpenAI 客户端
// BaseURL 为资源地址，Model 为部署名
func NewAzureClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, ProviderError{Code: ErrCodeInvalidAPIKey, Message: ErrMsgInvalidAPIKey, Provider: ProviderAzure}
	}
	if cfg.BaseURL == "" {
		return nil, ProviderError{Code: ErrCodeMissingEndpoint, Message: ErrMsgMissingBaseURL, Provider: ProviderAzure}
	}
	if cfg.Model == "" {
		return nil, ProviderError{Code: ErrCodeMissingModelName, Message: ErrMsgMissingModel, Provider: ProviderAzure}
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(cfg.BaseURL, "/"),
		url.PathEscape(cfg.Model),
		url.QueryEscape(apiVersion))

	return &ChatClient{
		provider:    ProviderAzure,
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		httpClient:  cfg.httpClient(),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// NewOpenAIClient 创建 OpenAI 兼容接口客户端
func NewOpenAIClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.Model == "" {
		return nil, ProviderError{Code: ErrCodeMissingModelName, Message: ErrMsgMissingModel, Provider: ProviderOpenAI}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	// 官方接口必须提供密钥，自建的兼容服务可以不提供
	if cfg.APIKey == "" && baseURL == DefaultOpenAIBaseURL {
		return nil, ProviderError{Code: ErrCodeInvalidAPIKey, Message: ErrMsgInvalidAPIKey, Provider: ProviderOpenAI}
	}

	return &ChatClient{
		provider:    ProviderOpenAI,
		endpoint:    strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		httpClient:  cfg.httpClient(),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name 返回后端和模型名称
func (c *ChatClient) Name() string {
	return c.provider + "/" + c.model
}

// Generate 发送 system + user 两条消息，返回第一个选项的文本
func (c *ChatClient) Generate(ctx context.Context, systemPrompt, userPrompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ProviderError{Code: ErrCodeEmptyPrompt, Message: ErrMsgEmptyPrompt, Provider: c.provider}
	}

	maxTokens, temperature := applyGenerateOptions(&Config{MaxTokens: c.maxTokens, Temperature: c.temperature}, options)

	req := &ChatCompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	// Azure 的模型由部署名决定
	if c.provider != ProviderAzure {
		req.Model = c.model
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	return c.processResponse(resp)
}

// sendRequest 发送API请求并解析响应
// 只尝试一次，失败直接返回
func (c *ChatClient) sendRequest(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, ProviderError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("failed to marshal request: %v", err), Provider: c.provider}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, ProviderError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("failed to create request: %v", err), Provider: c.provider}
	}

	// 设置请求头
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		if c.provider == ProviderAzure {
			httpReq.Header.Set("api-key", c.apiKey)
		} else {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ProviderError{Code: ErrCodeNetworkError, Message: fmt.Sprintf("failed to read response: %v", err), Provider: c.provider}
	}

	var chatResp ChatCompletionResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	// 检查HTTP状态码
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && chatResp.Error != nil && chatResp.Error.Message != "" {
			return nil, statusError(c.provider, resp.StatusCode, chatResp.Error.Message)
		}
		return nil, statusError(c.provider, resp.StatusCode, truncateBody(body))
	}

	if decodeErr != nil {
		return nil, ProviderError{Code: ErrCodeInvalidResponse, Message: fmt.Sprintf("failed to parse response: %v", decodeErr), Provider: c.provider}
	}
	if chatResp.Error != nil {
		return nil, ProviderError{Code: ErrCodeServerError, Message: "API error: " + chatResp.Error.Message, Provider: c.provider}
	}

	return &chatResp, nil
}

// processResponse 取第一个选项的消息内容
func (c *ChatClient) processResponse(resp *ChatCompletionResponse) (*Response, error) {
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, ProviderError{Code: ErrCodeEmptyResponse, Message: ErrMsgEmptyResponse, Provider: c.provider}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, ProviderError{Code: ErrCodeContentFilter, Message: ErrMsgContentFilter, Provider: c.provider}
	}

	result := &Response{
		Text:         *choice.Message.Content,
		ModelName:    c.model,
		FinishReason: choice.FinishReason,
		FinishTime:   time.Now(),
	}
	if resp.Model != "" {
		result.ModelName = resp.Model
	}
	if resp.Usage != nil {
		result.TokenCount = resp.Usage.TotalTokens
	}
	return result, nil
}

// truncateBody 截断错误响应体，避免把整页HTML写进错误信息
func truncateBody(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

// 在包初始化时注册聊天补全客户端
func init() {
	RegisterClient(ProviderAzure, NewAzureClient)
	RegisterClient(ProviderOpenAI, NewOpenAIClient)
}
