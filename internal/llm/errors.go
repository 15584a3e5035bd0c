package llm

import (
	"context"
	"errors"
	"fmt"
)

// ProviderError 模型后端调用错误
// 网络不可达、非2xx响应、响应结构无法解析或缺少预期字段时返回
type ProviderError struct {
	Code     int    // 错误码
	Message  string // 错误消息
	Provider string // 后端名称
}

// Error 实现error接口
func (e ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider error (%s, code=%d): %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidAPIKey    = 1001 // 无效的API密钥
	ErrCodeInvalidRequest   = 1002 // 无效的请求
	ErrCodeNetworkError     = 1003 // 网络连接错误
	ErrCodeRateLimited      = 1004 // 请求频率超限
	ErrCodeServerError      = 1005 // 服务器错误
	ErrCodeTimeout          = 1006 // 请求超时
	ErrCodeEmptyPrompt      = 1007 // 提示词为空
	ErrCodeContentFilter    = 1008 // 内容安全过滤
	ErrCodeInvalidResponse  = 1009 // 响应结构无法解析
	ErrCodeEmptyResponse    = 1010 // 响应缺少预期字段
	ErrCodeUnknownProvider  = 1011 // 未注册的后端
	ErrCodeMissingEndpoint  = 1012 // 未配置服务地址
	ErrCodeMissingModelName = 1013 // 未配置模型或部署名
)

// 错误消息常量
const (
	ErrMsgInvalidAPIKey  = "invalid API key"
	ErrMsgRateLimited    = "too many requests, rate limit exceeded"
	ErrMsgTimeout        = "request timed out"
	ErrMsgEmptyPrompt    = "prompt cannot be empty"
	ErrMsgContentFilter  = "content filtered due to safety concerns"
	ErrMsgEmptyResponse  = "response does not contain generated text"
	ErrMsgMissingModel   = "model or deployment name is required"
	ErrMsgMissingBaseURL = "base URL is required"
)

// NewProviderError 创建新的后端错误
func NewProviderError(code int, message string) ProviderError {
	return ProviderError{
		Code:    code,
		Message: message,
	}
}

// transportError 把 http.Client 返回的错误转换为后端错误
func transportError(provider string, err error) ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return ProviderError{
			Code:     ErrCodeTimeout,
			Message:  fmt.Sprintf("%s: %v", ErrMsgTimeout, err),
			Provider: provider,
		}
	}
	return ProviderError{
		Code:     ErrCodeNetworkError,
		Message:  fmt.Sprintf("request failed: %v", err),
		Provider: provider,
	}
}

// statusError 根据HTTP状态码生成后端错误
func statusError(provider string, status int, detail string) ProviderError {
	code := ErrCodeServerError
	switch {
	case status == 401 || status == 403:
		code = ErrCodeInvalidAPIKey
	case status == 429:
		code = ErrCodeRateLimited
		detail = ErrMsgRateLimited + ": " + detail
	case status == 400 || status == 404 || status == 422:
		code = ErrCodeInvalidRequest
	}
	return ProviderError{
		Code:     code,
		Message:  fmt.Sprintf("API error (status %d): %s", status, detail),
		Provider: provider,
	}
}
