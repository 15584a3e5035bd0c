package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/treaty-aligner/internal/alignment"
	"github.com/fyerfyer/treaty-aligner/internal/llm"
)

// AlignmentService 对齐服务
// 负责串联提示词构造、模型调用和响应解析
// 每次调用相互独立，服务本身不保存请求状态
type AlignmentService struct {
	llm        llm.Client                // 大模型客户端
	parser     *alignment.ResponseParser // 响应解析器
	extraction *ExtractionService        // 文档提取服务(可选)
	logger     *logrus.Logger            // 日志记录器
}

// AlignmentOption 对齐服务配置选项
type AlignmentOption func(*AlignmentService)

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) AlignmentOption {
	return func(s *AlignmentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExtractionService 设置文档提取服务
func WithExtractionService(extraction *ExtractionService) AlignmentOption {
	return func(s *AlignmentService) {
		s.extraction = extraction
	}
}

// NewAlignmentService 创建对齐服务
func NewAlignmentService(client llm.Client, opts ...AlignmentOption) *AlignmentService {
	srv := &AlignmentService{
		llm:    client,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.parser = alignment.NewResponseParser(alignment.WithParserLogger(srv.logger))
	return srv
}

// Provider 返回当前使用的模型名称
func (s *AlignmentService) Provider() string {
	return s.llm.Name()
}

// Align 对齐日文和英文段落
// 失败时返回 ProviderError 或 MalformedResponseError(可用 errors.As 判断)，不返回部分结果
// 需要单元素占位结果的调用方(HTTP接口、alignctl align)用 alignment.FallbackPairs(err) 生成
func (s *AlignmentService) Align(ctx context.Context, japanese, english []string) ([]alignment.Pair, error) {
	// 两侧都为空时没有需要对齐的内容
	if len(japanese) == 0 && len(english) == 0 {
		return []alignment.Pair{}, nil
	}

	logger := s.logger.WithFields(logrus.Fields{
		"model":        s.llm.Name(),
		"source_paras": len(japanese),
		"target_paras": len(english),
	})
	logger.Info("Starting alignment")

	systemPrompt, userPrompt := llm.BuildAlignmentPrompts(japanese, english)

	start := time.Now()
	resp, err := s.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.WithError(err).Error("LLM generation failed")
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}

	logger = logger.WithFields(logrus.Fields{
		"elapsed":       time.Since(start).String(),
		"tokens":        resp.TokenCount,
		"finish_reason": resp.FinishReason,
		"cached":        resp.Cached,
	})
	if resp.FinishReason == "length" {
		logger.Warn("LLM output reached the token limit")
	}

	pairs, err := s.parser.Parse(resp.Text)
	if err != nil {
		logger.WithError(err).Error("Failed to parse LLM response")
		return nil, err
	}

	coverage := alignment.CheckCoverage(pairs, japanese, english)
	if !coverage.Complete() {
		logger.WithFields(logrus.Fields{
			"missing_source": len(coverage.MissingSource),
			"missing_target": len(coverage.MissingTarget),
		}).Warn("Alignment does not cover every input paragraph")
	}

	logger.WithField("pairs", len(pairs)).Info("Alignment completed")
	return pairs, nil
}

// DocumentAlignment 两个文档的对齐结果
type DocumentAlignment struct {
	Source   []string           // 日文段落
	Target   []string           // 英文段落
	Pairs    []alignment.Pair   // 对齐结果
	Coverage alignment.Coverage // 覆盖情况
}

// AlignDocuments 提取两个文档的段落并对齐
// 提取失败返回 document.ExtractionError，此时不会调用模型
func (s *AlignmentService) AlignDocuments(ctx context.Context, japanesePath, englishPath string) (*DocumentAlignment, error) {
	if s.extraction == nil {
		return nil, fmt.Errorf("extraction service not configured")
	}

	japanese, english, err := s.extraction.ExtractPair(ctx, japanesePath, englishPath)
	if err != nil {
		return nil, err
	}

	return s.alignExtracted(ctx, japanese, english)
}

// AlignUploads 暂存两个上传文件，提取并对齐，最后删除暂存文件
func (s *AlignmentService) AlignUploads(ctx context.Context, japanese, english Upload) (*DocumentAlignment, error) {
	if s.extraction == nil {
		return nil, fmt.Errorf("extraction service not configured")
	}

	jp, en, err := s.extraction.ExtractUploads(ctx, japanese, english)
	if err != nil {
		return nil, err
	}

	return s.alignExtracted(ctx, jp, en)
}

func (s *AlignmentService) alignExtracted(ctx context.Context, japanese, english []string) (*DocumentAlignment, error) {
	result := &DocumentAlignment{
		Source: japanese,
		Target: english,
	}

	pairs, err := s.Align(ctx, japanese, english)
	if err != nil {
		return result, err
	}

	result.Pairs = pairs
	result.Coverage = alignment.CheckCoverage(pairs, japanese, english)
	return result, nil
}
