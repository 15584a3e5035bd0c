package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/treaty-aligner/internal/cache"
)

// 缓存键前缀
const responseCachePrefix = "llm:response"

// CachedClient 带响应缓存的客户端装饰器
// 同一后端收到完全相同的提示词时直接返回缓存的原始文本
type CachedClient struct {
	client Client
	cache  cache.Cache
	ttl    time.Duration
	logger logrus.FieldLogger
}

// CachedOption 缓存客户端选项
type CachedOption func(*CachedClient)

// WithCacheLogger 设置日志记录器
func WithCacheLogger(logger logrus.FieldLogger) CachedOption {
	return func(c *CachedClient) {
		c.logger = logger
	}
}

// NewCachedClient 用缓存包装客户端
func NewCachedClient(client Client, c cache.Cache, ttl time.Duration, opts ...CachedOption) *CachedClient {
	cc := &CachedClient{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Name 返回被包装客户端的名称
func (c *CachedClient) Name() string {
	return c.client.Name()
}

// Generate 先查缓存，未命中时调用后端并写入缓存
// 缓存读写失败只记录日志，不影响请求
func (c *CachedClient) Generate(ctx context.Context, systemPrompt, userPrompt string, options ...GenerateOption) (*Response, error) {
	key := cache.HashKey(responseCachePrefix, c.client.Name(), optionsKey(options), systemPrompt, userPrompt)

	if text, found, err := c.cache.Get(ctx, key); err != nil {
		c.logger.WithError(err).Warn("Failed to read LLM response cache")
	} else if found {
		c.logger.WithField("model", c.client.Name()).Debug("LLM response cache hit")
		return &Response{
			Text:       text,
			ModelName:  c.client.Name(),
			Cached:     true,
			FinishTime: time.Now(),
		}, nil
	}

	resp, err := c.client.Generate(ctx, systemPrompt, userPrompt, options...)
	if err != nil {
		return nil, err
	}

	// 被截断的输出不缓存
	if resp.FinishReason != "length" {
		if err := c.cache.Set(ctx, key, resp.Text, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Failed to write LLM response cache")
		}
	}

	return resp, nil
}

// optionsKey 把请求级选项编码进缓存键
// 未设置的选项由被包装客户端的配置决定，而该配置在装饰器生命周期内不变
func optionsKey(options []GenerateOption) string {
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	maxTokens, temperature := "default", "default"
	if opts.MaxTokens != nil {
		maxTokens = fmt.Sprintf("%d", *opts.MaxTokens)
	}
	if opts.Temperature != nil {
		temperature = fmt.Sprintf("%g", *opts.Temperature)
	}
	return "max_tokens=" + maxTokens + ";temperature=" + temperature
}
