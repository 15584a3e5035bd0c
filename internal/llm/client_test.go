package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMockClientGenerate 测试使用Mock客户端的文本生成
func TestMockClientGenerate(t *testing.T) {
	mockClient := NewMockClient(t)

	expectedResp := &Response{
		Text:       `[{"jp":"第一条","en":"Article 1"}]`,
		TokenCount: 5,
		ModelName:  "mock-model",
		FinishTime: time.Now(),
	}

	mockClient.EXPECT().Generate(mock.Anything, AlignmentSystemPrompt, mock.Anything).Return(expectedResp, nil)

	resp, err := mockClient.Generate(context.Background(), AlignmentSystemPrompt, "user prompt")

	assert.NoError(t, err)
	assert.Equal(t, expectedResp.Text, resp.Text)
	assert.Equal(t, expectedResp.TokenCount, resp.TokenCount)
}

// TestMockClientErrors 测试错误处理
func TestMockClientErrors(t *testing.T) {
	mockClient := NewMockClient(t)

	emptyPromptErr := NewProviderError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	mockClient.EXPECT().Generate(mock.Anything, mock.Anything, "").Return(nil, emptyPromptErr)

	_, err := mockClient.Generate(context.Background(), "system", "")

	assert.Error(t, err)
	var providerErr ProviderError
	assert.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeEmptyPrompt, providerErr.Code)
}

// TestMockClientName 测试模型名称方法
func TestMockClientName(t *testing.T) {
	mockClient := NewMockClient(t)
	mockClient.EXPECT().Name().Return("mock/model")

	assert.Equal(t, "mock/model", mockClient.Name())
}

// TestAzureClientIntegration 测试 Azure OpenAI 客户端集成
// 只有在设置 AZURE_OPENAI_API_KEY 等环境变量时才运行
func TestAzureClientIntegration(t *testing.T) {
	apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
	endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")
	if apiKey == "" || endpoint == "" || deployment == "" {
		t.Skip("Haven't set AZURE_OPENAI_* environment variables, skipping test")
	}

	client, err := NewClient(ProviderAzure,
		WithAPIKey(apiKey),
		WithBaseURL(endpoint),
		WithModel(deployment),
		WithTimeout(60*time.Second),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	system, user := BuildAlignmentPrompts([]string{"第一条"}, []string{"Article 1"})
	resp, err := client.Generate(ctx, system, user, WithGenerateMaxTokens(64))
	if err != nil {
		t.Logf("API calling error: %v", err)
		t.Skip("Skipping API test")
	}
	assert.NotEmpty(t, resp.Text)
}

// TestConfigAndOptions 测试配置选项
func TestConfigAndOptions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, float32(0), cfg.Temperature)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	cfg = NewConfig(
		WithAPIKey("test-key"),
		WithBaseURL("https://example.openai.azure.com"),
		WithModel("gpt-4o"),
		WithAPIVersion("2024-06-01"),
		WithTimeout(30*time.Second),
		WithMaxTokens(100),
		WithTemperature(0.5),
	)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "2024-06-01", cfg.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.MaxTokens)
	assert.Equal(t, float32(0.5), cfg.Temperature)

	// 未指定HTTP客户端时按超时时间创建
	assert.Equal(t, 30*time.Second, cfg.httpClient().Timeout)

	custom := &http.Client{Timeout: time.Second}
	cfg = NewConfig(WithHTTPClient(custom))
	assert.Same(t, custom, cfg.httpClient())
}

// TestGenerateOptions 测试生成选项
func TestGenerateOptions(t *testing.T) {
	cfg := DefaultConfig()

	maxTokens, temperature := applyGenerateOptions(cfg, nil)
	assert.Equal(t, DefaultMaxTokens, maxTokens)
	assert.Equal(t, float32(0), temperature)

	maxTokens, temperature = applyGenerateOptions(cfg, []GenerateOption{
		WithGenerateMaxTokens(123),
		WithGenerateTemperature(0.75),
	})
	assert.Equal(t, 123, maxTokens)
	assert.Equal(t, float32(0.75), temperature)
}

// TestClientFactory 测试客户端工厂功能
func TestClientFactory(t *testing.T) {
	testFactory := func(opts ...Option) (Client, error) {
		return NewMockClient(t), nil
	}
	RegisterClient("test-factory", testFactory)

	client, err := NewClient("test-factory")
	assert.NoError(t, err)
	assert.NotNil(t, client)

	assert.Contains(t, Providers(), ProviderAzure)
	assert.Contains(t, Providers(), ProviderOpenAI)
	assert.Contains(t, Providers(), ProviderOllama)

	// 测试无效的客户端类型
	_, err = NewClient("invalid-type")
	assert.Error(t, err)
	var providerErr ProviderError
	assert.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeUnknownProvider, providerErr.Code)
}

// TestTransportAndStatusErrors 测试HTTP层错误到后端错误码的映射
func TestTransportAndStatusErrors(t *testing.T) {
	timeout := transportError(ProviderOllama, fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeTimeout, timeout.Code)
	assert.Contains(t, timeout.Message, ErrMsgTimeout)
	assert.Equal(t, ProviderOllama, timeout.Provider)

	network := transportError(ProviderAzure, assert.AnError)
	assert.Equal(t, ErrCodeNetworkError, network.Code)
	assert.Contains(t, network.Message, assert.AnError.Error())

	limited := statusError(ProviderOpenAI, http.StatusTooManyRequests, "slow down")
	assert.Equal(t, ErrCodeRateLimited, limited.Code)
	assert.Contains(t, limited.Message, ErrMsgRateLimited)
	assert.Contains(t, limited.Message, "slow down")

	assert.Equal(t, ErrCodeInvalidAPIKey, statusError(ProviderAzure, http.StatusForbidden, "").Code)
	assert.Equal(t, ErrCodeInvalidRequest, statusError(ProviderAzure, http.StatusNotFound, "").Code)
	assert.Equal(t, ErrCodeServerError, statusError(ProviderAzure, http.StatusBadGateway, "").Code)
}
