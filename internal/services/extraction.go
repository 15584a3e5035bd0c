package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fyerfyer/treaty-aligner/internal/document"
	"github.com/fyerfyer/treaty-aligner/pkg/storage"
)

// Extractor 从文件中提取段落
// document.Factory 实现了该接口
type Extractor interface {
	Extract(ctx context.Context, filePath string) ([]string, error)
}

// Upload 一个待处理的上传文件
type Upload struct {
	Name   string    // 原始文件名，用于识别格式
	Reader io.Reader // 文件内容
}

// ExtractionService 文档提取服务
// 负责暂存上传文件、调用解析器并在结束后清理
type ExtractionService struct {
	extractor Extractor       // 段落提取器
	storage   storage.Storage // 上传文件暂存
	tempDir   string          // 非本地存储时的临时目录
	logger    *logrus.Logger  // 日志记录器
}

// ExtractionOption 提取服务配置选项
type ExtractionOption func(*ExtractionService)

// WithExtractionLogger 设置日志记录器
func WithExtractionLogger(logger *logrus.Logger) ExtractionOption {
	return func(s *ExtractionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTempDir 设置临时目录
func WithTempDir(dir string) ExtractionOption {
	return func(s *ExtractionService) {
		s.tempDir = dir
	}
}

// NewExtractionService 创建文档提取服务
func NewExtractionService(extractor Extractor, store storage.Storage, opts ...ExtractionOption) *ExtractionService {
	srv := &ExtractionService{
		extractor: extractor,
		storage:   store,
		tempDir:   os.TempDir(),
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// ExtractFile 提取单个文件的段落
func (s *ExtractionService) ExtractFile(ctx context.Context, filePath string) ([]string, error) {
	start := time.Now()
	paragraphs, err := s.extractor.Extract(ctx, filePath)
	if err != nil {
		s.logger.WithError(err).WithField("file", filepath.Base(filePath)).Error("Failed to extract document")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"file":       filepath.Base(filePath),
		"paragraphs": len(paragraphs),
		"elapsed":    time.Since(start).String(),
	}).Info("Document extracted")
	return paragraphs, nil
}

// ExtractPair 并发提取日文和英文文档，任一失败立即返回
func (s *ExtractionService) ExtractPair(ctx context.Context, japanesePath, englishPath string) (japanese, english []string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		japanese, err = s.ExtractFile(gctx, japanesePath)
		return err
	})
	g.Go(func() error {
		var err error
		english, err = s.ExtractFile(gctx, englishPath)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return japanese, english, nil
}

// ExtractUpload 暂存上传文件并提取段落，结束后删除暂存文件
func (s *ExtractionService) ExtractUpload(ctx context.Context, upload Upload) ([]string, error) {
	path, release, err := s.stage(ctx, upload)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.ExtractFile(ctx, path)
}

// ExtractUploads 暂存两个上传文件并并发提取
// 无论成功与否，暂存文件都会被删除
func (s *ExtractionService) ExtractUploads(ctx context.Context, japanese, english Upload) ([]string, []string, error) {
	jpPath, releaseJP, err := s.stage(ctx, japanese)
	if err != nil {
		return nil, nil, err
	}
	defer releaseJP()

	enPath, releaseEN, err := s.stage(ctx, english)
	if err != nil {
		return nil, nil, err
	}
	defer releaseEN()

	return s.ExtractPair(ctx, jpPath, enPath)
}

// Supports 判断文件名对应的格式是否可以解析
func (s *ExtractionService) Supports(filename string) bool {
	if f, ok := s.extractor.(interface{ Supports(string) bool }); ok {
		return f.Supports(filename)
	}
	return true
}

// stage 保存上传文件并返回本地路径和清理函数
func (s *ExtractionService) stage(ctx context.Context, upload Upload) (string, func(), error) {
	info, err := s.storage.Save(ctx, upload.Reader, upload.Name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to stage upload %s: %w", upload.Name, err)
	}

	remove := func() {
		// 使用独立的上下文，请求取消后仍然要清理
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.storage.Delete(cleanupCtx, info.ID); err != nil {
			s.logger.WithError(err).WithField("file_id", info.ID).Warn("Failed to delete staged upload")
		}
	}

	path, cleanup, err := storage.Materialize(ctx, s.storage, info, s.tempDir)
	if err != nil {
		remove()
		return "", nil, fmt.Errorf("failed to read staged upload %s: %w", upload.Name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"file_id":  info.ID,
		"filename": upload.Name,
		"size":     info.Size,
	}).Debug("Upload staged")

	return path, func() {
		cleanup()
		remove()
	}, nil
}

// 确保 document.Factory 满足接口
var _ Extractor = (*document.Factory)(nil)
