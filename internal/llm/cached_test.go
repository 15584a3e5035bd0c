package llm

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/treaty-aligner/internal/cache"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestCachedClientHitAndMiss(t *testing.T) {
	inner := NewMockClient(t)
	inner.EXPECT().Name().Return("azure/treaty-gpt")
	inner.EXPECT().Generate(mock.Anything, "system", "user").
		Return(&Response{Text: `[{"jp":"a","en":"b"}]`, FinishReason: "stop"}, nil).Once()

	logger, _ := test.NewNullLogger()
	client := NewCachedClient(inner, newTestCache(t), time.Minute, WithCacheLogger(logger))
	assert.Equal(t, "azure/treaty-gpt", client.Name())

	first, err := client.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := client.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
}

func TestCachedClientSkipsTruncatedAndErrors(t *testing.T) {
	inner := NewMockClient(t)
	inner.EXPECT().Name().Return("ollama/llama3")
	inner.EXPECT().Generate(mock.Anything, "s", "truncated").
		Return(&Response{Text: `[{"jp":"a"`, FinishReason: "length"}, nil).Twice()
	inner.EXPECT().Generate(mock.Anything, "s", "failing").
		Return(nil, NewProviderError(ErrCodeNetworkError, "down")).Twice()

	client := NewCachedClient(inner, newTestCache(t), time.Minute)

	for i := 0; i < 2; i++ {
		resp, err := client.Generate(context.Background(), "s", "truncated")
		require.NoError(t, err)
		assert.False(t, resp.Cached)

		_, err = client.Generate(context.Background(), "s", "failing")
		assert.Error(t, err)
	}
}

func TestCachedClientKeysOnGenerateOptions(t *testing.T) {
	inner := NewMockClient(t)
	inner.EXPECT().Name().Return("openai/gpt-4o")
	inner.EXPECT().Generate(mock.Anything, "s", "u").
		Return(&Response{Text: `[]`, FinishReason: "stop"}, nil).Once()
	inner.EXPECT().Generate(mock.Anything, "s", "u", mock.Anything).
		Return(&Response{Text: `[{"jp":"a","en":"b"}]`, FinishReason: "stop"}, nil).Twice()

	client := NewCachedClient(inner, newTestCache(t), time.Minute)
	ctx := context.Background()

	resp, err := client.Generate(ctx, "s", "u")
	require.NoError(t, err)
	assert.False(t, resp.Cached)

	// 不同的请求级选项不能命中同一条缓存
	resp, err = client.Generate(ctx, "s", "u", WithGenerateMaxTokens(100))
	require.NoError(t, err)
	assert.False(t, resp.Cached)

	resp, err = client.Generate(ctx, "s", "u", WithGenerateMaxTokens(100))
	require.NoError(t, err)
	assert.True(t, resp.Cached)

	resp, err = client.Generate(ctx, "s", "u", WithGenerateTemperature(0.5))
	require.NoError(t, err)
	assert.False(t, resp.Cached)
}

func TestOptionsKey(t *testing.T) {
	assert.Equal(t, "max_tokens=default;temperature=default", optionsKey(nil))
	assert.Equal(t, "max_tokens=64;temperature=0.25",
		optionsKey([]GenerateOption{WithGenerateTemperature(0.25), WithGenerateMaxTokens(64)}))
	assert.NotEqual(t, optionsKey(nil), optionsKey([]GenerateOption{WithGenerateTemperature(0)}))
}
