package app

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/treaty-aligner/config"
	"github.com/fyerfyer/treaty-aligner/internal/cache"
	"github.com/fyerfyer/treaty-aligner/internal/document"
	"github.com/fyerfyer/treaty-aligner/internal/llm"
	"github.com/fyerfyer/treaty-aligner/internal/services"
	"github.com/fyerfyer/treaty-aligner/pkg/storage"
)

// App 根据配置组装好的服务集合
// 服务端和命令行工具共用
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	LLM        llm.Client
	Storage    storage.Storage
	Cache      cache.Cache // 未启用缓存时为nil
	Factory    *document.Factory
	Extraction *services.ExtractionService
	Alignment  *services.AlignmentService

	closers []io.Closer
}

// New 按配置创建所有服务
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = logrus.New()
	}
	a := &App{Config: cfg, Logger: logger}

	converter, err := NewConverter(cfg.Converter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize converter: %w", err)
	}
	if converter == nil {
		logger.Warn("Legacy converter is not configured, legacy documents will be rejected")
	}
	a.Factory = document.NewFactory(converter, cfg.Converter.Extensions...)

	a.Storage, err = NewStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client, err := NewLLMClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	if cfg.Cache.Enable {
		a.Cache, err = NewCache(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		if closer, ok := a.Cache.(io.Closer); ok {
			a.closers = append(a.closers, closer)
		}
		client = llm.NewCachedClient(client, a.Cache, time.Duration(cfg.Cache.TTL)*time.Second,
			llm.WithCacheLogger(logger))
		logger.WithField("type", cfg.Cache.Type).Info("LLM response cache enabled")
	}
	a.LLM = client

	extractionOpts := []services.ExtractionOption{services.WithExtractionLogger(logger)}
	if cfg.Storage.TempDir != "" {
		extractionOpts = append(extractionOpts, services.WithTempDir(cfg.Storage.TempDir))
	}
	a.Extraction = services.NewExtractionService(a.Factory, a.Storage, extractionOpts...)

	a.Alignment = services.NewAlignmentService(a.LLM,
		services.WithLogger(logger),
		services.WithExtractionService(a.Extraction),
	)

	logger.WithFields(logrus.Fields{
		"provider": a.LLM.Name(),
		"storage":  cfg.Storage.Type,
	}).Info("Services initialized")

	return a, nil
}

// Close 释放外部连接
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewLLMClient 根据配置创建大模型客户端
func NewLLMClient(cfg config.LLMConfig) (llm.Client, error) {
	opts := []llm.Option{
		llm.WithAPIKey(cfg.APIKey),
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithModel(cfg.Model),
		llm.WithTemperature(cfg.Temperature),
	}
	if cfg.APIVersion != "" {
		opts = append(opts, llm.WithAPIVersion(cfg.APIVersion))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, llm.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.MaxTokens))
	}
	return llm.NewClient(cfg.Provider, opts...)
}

// NewConverter 根据配置创建旧格式转换器
// 未配置命令时返回nil
func NewConverter(cfg config.ConverterConfig, logger *logrus.Logger) (*document.Converter, error) {
	if cfg.Command == "" {
		return nil, nil
	}
	return document.NewConverter(document.ConverterConfig{
		Command:   cfg.Command,
		Args:      cfg.Args,
		WorkDir:   cfg.WorkDir,
		Env:       cfg.Env,
		OutputDir: cfg.OutputDir,
		Encoding:  cfg.Encoding,
		Timeout:   cfg.Timeout,
	}, document.WithConverterLogger(logger))
}

// NewStorage 根据配置创建上传文件存储
func NewStorage(cfg config.StorageConfig) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type: cfg.Type,
		Local: storage.LocalConfig{
			Path: cfg.Path,
		},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		},
	})
}

// NewCache 根据配置创建响应缓存
func NewCache(cfg config.CacheConfig) (cache.Cache, error) {
	return cache.NewCache(cache.Config{
		Type:            cfg.Type,
		RedisAddr:       cfg.Address,
		RedisPassword:   cfg.Password,
		RedisDB:         cfg.DB,
		KeyPrefix:       cfg.KeyPrefix,
		DefaultTTL:      time.Duration(cfg.TTL) * time.Second,
		CleanupInterval: 10 * time.Minute,
		MaxEntries:      cfg.MaxEntries,
	})
}
