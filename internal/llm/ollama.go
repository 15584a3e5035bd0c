package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient 本地 Ollama 推理服务客户端
// 使用 /api/generate，要求JSON格式且不使用流式输出
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient 创建 Ollama 客户端
func NewOllamaClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.Model == "" {
		return nil, ProviderError{Code: ErrCodeMissingModelName, Message: ErrMsgMissingModel, Provider: ProviderOllama}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}

	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.httpClient(),
	}, nil
}

// Name 返回后端和模型名称
func (c *OllamaClient) Name() string {
	return ProviderOllama + "/" + c.model
}

// Generate 调用 /api/generate 并返回 response 字段
func (c *OllamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ProviderError{Code: ErrCodeEmptyPrompt, Message: ErrMsgEmptyPrompt, Provider: ProviderOllama}
	}

	req := &OllamaGenerateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: userPrompt,
		Format: "json",
		Stream: false,
	}

	// 只有显式指定时才下发采样参数，其余使用模型自身的默认值
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}
	if opts.MaxTokens != nil || opts.Temperature != nil {
		req.Options = &OllamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		}
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, ProviderError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("failed to marshal request: %v", err), Provider: ProviderOllama}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, ProviderError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("failed to create request: %v", err), Provider: ProviderOllama}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ProviderOllama, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ProviderError{Code: ErrCodeNetworkError, Message: fmt.Sprintf("failed to read response: %v", err), Provider: ProviderOllama}
	}

	var genResp OllamaGenerateResponse
	decodeErr := json.Unmarshal(body, &genResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && genResp.Error != "" {
			return nil, statusError(ProviderOllama, resp.StatusCode, genResp.Error)
		}
		return nil, statusError(ProviderOllama, resp.StatusCode, truncateBody(body))
	}

	if decodeErr != nil {
		return nil, ProviderError{Code: ErrCodeInvalidResponse, Message: fmt.Sprintf("failed to parse response: %v", decodeErr), Provider: ProviderOllama}
	}
	if genResp.Error != "" {
		return nil, ProviderError{Code: ErrCodeServerError, Message: "API error: " + genResp.Error, Provider: ProviderOllama}
	}
	if genResp.Response == nil {
		return nil, ProviderError{Code: ErrCodeEmptyResponse, Message: ErrMsgEmptyResponse, Provider: ProviderOllama}
	}

	modelName := c.model
	if genResp.Model != "" {
		modelName = genResp.Model
	}

	return &Response{
		Text:         *genResp.Response,
		TokenCount:   genResp.PromptEvalCount + genResp.EvalCount,
		ModelName:    modelName,
		FinishReason: genResp.DoneReason,
		FinishTime:   time.Now(),
	}, nil
}

func init() {
	RegisterClient(ProviderOllama, NewOllamaClient)
}
