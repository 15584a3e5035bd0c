package document

import (
	"errors"
	"fmt"
)

var (
	// ErrConverterTimeout 转换器进程超时(已被强制终止)
	ErrConverterTimeout = errors.New("converter process timed out")

	// ErrConverterFailed 转换器进程启动失败或以非零状态退出
	ErrConverterFailed = errors.New("converter process failed")

	// ErrOutputMissing 转换器没有生成预期的输出文件
	ErrOutputMissing = errors.New("converter did not produce the expected output file")

	// ErrUnsupportedFormat 不支持的文档格式
	ErrUnsupportedFormat = errors.New("unsupported document type")

	// ErrInvalidDocument 文档损坏或结构不符合预期
	ErrInvalidDocument = errors.New("invalid document")

	// ErrNoContent 文档中没有可提取的文本
	ErrNoContent = errors.New("no text content found")
)

// ExtractionError 文本提取错误
// Kind 为上面定义的哨兵错误之一，可以用 errors.Is 判断
type ExtractionError struct {
	Kind error  // 错误类别
	Path string // 出错的文件
	Err  error  // 底层错误(可选)
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Kind)
}

// Unwrap 同时暴露错误类别和底层错误
func (e *ExtractionError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// newExtractionError 创建提取错误
func newExtractionError(kind error, path string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Path: path, Err: err}
}
