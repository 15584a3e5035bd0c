package model

import (
	"github.com/fyerfyer/treaty-aligner/internal/alignment"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// CoverageInfo 对齐覆盖情况
type CoverageInfo struct {
	SourceTotal   int      `json:"source_total"`   // 日文段落数
	TargetTotal   int      `json:"target_total"`   // 英文段落数
	MissingSource []string `json:"missing_source"` // 未出现在结果中的日文段落
	MissingTarget []string `json:"missing_target"` // 未出现在结果中的英文段落
	Complete      bool     `json:"complete"`       // 是否全部覆盖
}

// NewCoverageInfo 转换覆盖情况
func NewCoverageInfo(c alignment.Coverage) *CoverageInfo {
	return &CoverageInfo{
		SourceTotal:   c.SourceTotal,
		TargetTotal:   c.TargetTotal,
		MissingSource: nonNil(c.MissingSource),
		MissingTarget: nonNil(c.MissingTarget),
		Complete:      c.Complete(),
	}
}

// AlignResponse 对齐响应
// 失败时 Pairs 为单个占位对，Error 为错误信息
type AlignResponse struct {
	SourceFile string           `json:"source_file,omitempty"` // 日文文件名
	TargetFile string           `json:"target_file,omitempty"` // 英文文件名
	SourceLang string           `json:"source_lang"`           // 源语言
	TargetLang string           `json:"target_lang"`           // 目标语言
	Provider   string           `json:"provider,omitempty"`    // 使用的模型
	Pairs      []alignment.Pair `json:"pairs"`                 // 对齐结果
	Coverage   *CoverageInfo    `json:"coverage,omitempty"`    // 覆盖情况
	Error      string           `json:"error,omitempty"`       // 错误信息
}

// ExtractResponse 段落提取响应
type ExtractResponse struct {
	FileName   string   `json:"filename"`   // 文件名
	Paragraphs []string `json:"paragraphs"` // 段落
	Count      int      `json:"count"`      // 段落数量
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string `json:"status"`   // 服务状态
	Provider string `json:"provider"` // 使用的模型
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
