package alignment

import (
	"fmt"
	"unicode/utf8"
)

// ExcerptLimit 错误信息中原始文本摘录的最大字符数
const ExcerptLimit = 200

// MalformedResponseError 模型响应无法解析为对齐数组
type MalformedResponseError struct {
	Reason  string // 失败原因
	Excerpt string // 原始响应的摘录，长度受限
	Err     error  // 底层JSON错误(可选)
}

// Error 实现error接口
func (e *MalformedResponseError) Error() string {
	msg := "malformed model response: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (raw: %q)", msg, e.Excerpt)
}

// Unwrap 返回底层错误
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func newMalformedError(reason, raw string, err error) *MalformedResponseError {
	return &MalformedResponseError{
		Reason:  reason,
		Excerpt: Excerpt(raw, ExcerptLimit),
		Err:     err,
	}
}

// Excerpt 截取文本前 limit 个字符，超出部分以 "..." 表示
// 按字符而不是字节截断，避免切断多字节字符
func Excerpt(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i] + "..."
		}
		count++
	}
	return text
}
