package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Converter ConverterConfig `mapstructure:"converter"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host          string        `mapstructure:"host"`            // 服务器主机
	Port          int           `mapstructure:"port"`            // 服务器端口
	Mode          string        `mapstructure:"mode"`            // gin运行模式 (debug/release)
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`    // 读取超时
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`   // 写入超时，需要覆盖一次完整的模型调用
	MaxUploadSize int64         `mapstructure:"max_upload_size"` // 上传文件大小上限(字节)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	Format     string `mapstructure:"format"`      // 输出格式：json 或 text
	File       string `mapstructure:"file"`        // 日志文件路径，为空时只输出到标准输出
	MaxSize    int    `mapstructure:"max_size"`    // 单个日志文件大小上限(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 旧日志保留天数
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`    // 提供商：azure, openai, ollama
	Model       string        `mapstructure:"model"`       // 模型名称(azure 下为部署名)
	APIKey      string        `mapstructure:"api_key"`     // API密钥
	BaseURL     string        `mapstructure:"base_url"`    // 服务地址
	APIVersion  string        `mapstructure:"api_version"` // Azure API版本
	Timeout     time.Duration `mapstructure:"timeout"`     // 单次请求超时
	MaxTokens   int           `mapstructure:"max_tokens"`  // 最大生成token数量
	Temperature float32       `mapstructure:"temperature"` // 采样温度
}

// ConverterConfig 旧格式文档转换器配置
type ConverterConfig struct {
	Command    string            `mapstructure:"command"`    // 可执行文件
	Args       []string          `mapstructure:"args"`       // 参数模板，支持 {input} 和 {output_dir}
	WorkDir    string            `mapstructure:"work_dir"`   // 工作目录
	Env        map[string]string `mapstructure:"env"`        // 额外的环境变量
	OutputDir  string            `mapstructure:"output_dir"` // 输出目录
	Encoding   string            `mapstructure:"encoding"`   // 输出文件编码
	Timeout    time.Duration     `mapstructure:"timeout"`    // 超时时间
	Extensions []string          `mapstructure:"extensions"` // 交给转换器处理的扩展名
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`       // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`       // 本地存储路径
	TempDir   string `mapstructure:"temp_dir"`   // 非本地存储时下载文件的临时目录
	Bucket    string `mapstructure:"bucket"`     // MinIO桶名称
	Prefix    string `mapstructure:"prefix"`     // MinIO对象名前缀
	Endpoint  string `mapstructure:"endpoint"`   // MinIO端点
	AccessKey string `mapstructure:"access_key"` // MinIO访问密钥
	SecretKey string `mapstructure:"secret_key"` // MinIO秘密密钥
	UseSSL    bool   `mapstructure:"use_ssl"`    // 是否使用SSL
}

// CacheConfig 模型响应缓存配置
type CacheConfig struct {
	Enable     bool   `mapstructure:"enable"`      // 是否启用缓存
	Type       string `mapstructure:"type"`        // 缓存类型：memory 或 redis
	Address    string `mapstructure:"address"`     // Redis地址
	Password   string `mapstructure:"password"`    // Redis密码
	DB         int    `mapstructure:"db"`          // Redis数据库
	KeyPrefix  string `mapstructure:"key_prefix"`  // Redis键前缀
	TTL        int    `mapstructure:"ttl"`         // 缓存TTL（秒）
	MaxEntries int    `mapstructure:"max_entries"` // 内存缓存条目上限，0表示不限制
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	// 设置默认值
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖，例如 LLM_API_KEY 覆盖 llm.api_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	processEnvironmentVariables(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// processEnvironmentVariables 展开配置值中的 ${ENV} 引用
func processEnvironmentVariables(cfg *Config) {
	for _, field := range []*string{
		&cfg.LLM.APIKey,
		&cfg.LLM.BaseURL,
		&cfg.LLM.Model,
		&cfg.Converter.Command,
		&cfg.Converter.WorkDir,
		&cfg.Converter.OutputDir,
		&cfg.Storage.Endpoint,
		&cfg.Storage.AccessKey,
		&cfg.Storage.SecretKey,
		&cfg.Cache.Address,
		&cfg.Cache.Password,
	} {
		*field = expandEnv(*field)
	}

	// viper 会把键转成小写，环境变量名统一恢复为大写
	env := make(map[string]string, len(cfg.Converter.Env))
	for k, val := range cfg.Converter.Env {
		env[strings.ToUpper(k)] = expandEnv(val)
	}
	cfg.Converter.Env = env
}

// expandEnv 整个值形如 ${NAME} 时替换为环境变量的值
// 环境变量未设置时保留原值
func expandEnv(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	envVar := value[2 : len(value)-1]
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return value
}

// Validate 检查配置是否完整
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "azure", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}

	switch c.Storage.Type {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	if c.Cache.Enable {
		switch c.Cache.Type {
		case "memory", "redis":
		default:
			return fmt.Errorf("unsupported cache type: %q", c.Cache.Type)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// Address 返回服务监听地址
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.max_upload_size", 32<<20)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	// LLM默认配置
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.base_url", "") // 为空时使用各后端的默认地址
	v.SetDefault("llm.api_version", "2024-02-01")
	v.SetDefault("llm.timeout", "10m")
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.temperature", 0)

	// 转换器默认配置
	v.SetDefault("converter.command", "")
	v.SetDefault("converter.output_dir", "./data/converted")
	v.SetDefault("converter.encoding", "ms932")
	v.SetDefault("converter.timeout", "60s")
	v.SetDefault("converter.extensions", []string{".jtd"})

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./data/uploads")
	v.SetDefault("storage.bucket", "treaty-aligner")
	v.SetDefault("storage.prefix", "uploads/")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", false)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.key_prefix", "aligner")
	v.SetDefault("cache.ttl", 86400) // 24小时
	v.SetDefault("cache.max_entries", 1024)
}
