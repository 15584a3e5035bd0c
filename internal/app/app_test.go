package app

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/treaty-aligner/config"
	"github.com/fyerfyer/treaty-aligner/internal/llm"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		LLM: config.LLMConfig{
			Provider:  "ollama",
			Model:     "llama3",
			Timeout:   time.Minute,
			MaxTokens: 8192,
		},
		Converter: config.ConverterConfig{
			OutputDir:  t.TempDir(),
			Extensions: []string{".jtd"},
		},
		Storage: config.StorageConfig{
			Type: "local",
			Path: t.TempDir(),
		},
		Cache: config.CacheConfig{
			Type: "memory",
			TTL:  60,
		},
	}
}

func TestNewWithoutCache(t *testing.T) {
	logger, hook := test.NewNullLogger()

	a, err := New(testConfig(t), logger)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "ollama/llama3", a.LLM.Name())
	assert.Nil(t, a.Cache)
	_, cached := a.LLM.(*llm.CachedClient)
	assert.False(t, cached)

	// 未配置转换器时旧格式不可用
	assert.False(t, a.Factory.Supports("treaty.jtd"))
	assert.True(t, a.Factory.Supports("treaty.docx"))

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Legacy converter is not configured, legacy documents will be rejected" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestNewWithConverterAndMemoryCache(t *testing.T) {
	logger, _ := test.NewNullLogger()

	cfg := testConfig(t)
	cfg.Converter.Command = "sh"
	cfg.Converter.Args = []string{"-c", "true", "{input}"}
	cfg.Cache.Enable = true

	a, err := New(cfg, logger)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Cache)
	_, cached := a.LLM.(*llm.CachedClient)
	assert.True(t, cached)
	assert.True(t, a.Factory.Supports("treaty.jtd"))
}

func TestNewWithRedisCache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Enable = true
	cfg.Cache.Type = "redis"
	cfg.Cache.Address = mr.Addr()

	a, err := New(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, a.Cache)
	assert.NoError(t, a.Close())
}

func TestNewInvalidProvider(t *testing.T) {
	logger, _ := test.NewNullLogger()

	cfg := testConfig(t)
	cfg.LLM.Provider = "azure"
	cfg.LLM.APIKey = "key" // 缺少服务地址

	_, err := New(cfg, logger)
	require.Error(t, err)

	var providerErr llm.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, llm.ErrCodeMissingEndpoint, providerErr.Code)
}

func TestNewLLMClientProviders(t *testing.T) {
	client, err := NewLLMClient(config.LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		APIKey:   "sk-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o", client.Name())

	client, err = NewLLMClient(config.LLMConfig{
		Provider: "azure",
		Model:    "aligner-deploy",
		APIKey:   "key",
		BaseURL:  "https://example.openai.azure.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "azure/aligner-deploy", client.Name())
}
