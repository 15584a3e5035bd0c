package llm

import (
	"context"
	"net/http"
	"time"
)

// Client 大模型客户端接口
// 输入系统提示词和用户提示词，返回模型生成的原始文本
// 实现不解析模型输出的内容
type Client interface {
	// Generate 根据提示词生成回答
	Generate(ctx context.Context, systemPrompt, userPrompt string, options ...GenerateOption) (*Response, error)

	// Name 返回后端和模型名称
	Name() string
}

// Config 大模型客户端配置
type Config struct {
	APIKey      string        // API密钥(Azure/OpenAI)
	BaseURL     string        // 服务地址
	Model       string        // 模型名称，Azure下为部署名
	APIVersion  string        // API版本(仅Azure)
	Timeout     time.Duration // 请求超时时间
	MaxTokens   int           // 最大生成Token数
	Temperature float32       // 采样温度
	HTTPClient  *http.Client  // 自定义HTTP客户端(可选)
}

// 默认值
const (
	DefaultMaxTokens       = 8192
	DefaultTimeout         = 10 * time.Minute
	DefaultAzureAPIVersion = "2024-02-01"
	DefaultOllamaBaseURL   = "http://localhost:11434"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
)

// DefaultConfig 返回默认配置
// 对齐任务要求确定性输出，温度固定为0
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxTokens:   DefaultMaxTokens,
		Temperature: 0,
	}
}

// Option 客户端配置选项函数类型
type Option func(*Config)

// WithAPIKey 设置API密钥
func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithBaseURL 设置服务地址
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel 设置模型名称
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIVersion 设置API版本
func WithAPIVersion(version string) Option {
	return func(c *Config) {
		c.APIVersion = version
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxTokens 设置最大生成Token数
func WithMaxTokens(tokens int) Option {
	return func(c *Config) {
		c.MaxTokens = tokens
	}
}

// WithTemperature 设置采样温度
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Temperature = temp
	}
}

// WithHTTPClient 设置HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// NewConfig 创建一个新的配置并应用选项
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// httpClient 返回配置的HTTP客户端
func (c *Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}

// GenerateOption 生成请求的选项
type GenerateOption func(*GenerateOptions)

// GenerateOptions 生成请求的选项集合
type GenerateOptions struct {
	MaxTokens   *int     // 最大生成Token数
	Temperature *float32 // 采样温度
}

// WithGenerateMaxTokens 设置生成请求的最大Token数
func WithGenerateMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = &tokens
	}
}

// WithGenerateTemperature 设置生成请求的采样温度
func WithGenerateTemperature(temp float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &temp
	}
}

// applyGenerateOptions 合并请求级选项和客户端配置
func applyGenerateOptions(cfg *Config, options []GenerateOption) (maxTokens int, temperature float32) {
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	maxTokens = cfg.MaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}
	temperature = cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	return maxTokens, temperature
}

// Factory 大模型客户端工厂函数类型
type Factory func(opts ...Option) (Client, error)

// 全局注册的大模型客户端工厂函数
var clientFactories = make(map[string]Factory)

// RegisterClient 注册大模型客户端工厂函数
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient 根据名称创建大模型客户端
// 部署时通过配置选择唯一的后端，调用方不需要区分
func NewClient(name string, opts ...Option) (Client, error) {
	factory, exists := clientFactories[name]
	if !exists {
		return nil, NewProviderError(
			ErrCodeUnknownProvider,
			"llm provider not registered: "+name)
	}
	return factory(opts...)
}

// Providers 返回已注册的后端名称
func Providers() []string {
	names := make([]string, 0, len(clientFactories))
	for name := range clientFactories {
		names = append(names, name)
	}
	return names
}
