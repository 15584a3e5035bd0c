package alignment

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const codeFence = "```"

// 开头的代码块标记，可带语言标签
var leadingFencePattern = regexp.MustCompile("^```[A-Za-z0-9_+-]*")

// ResponseParser 把模型返回的原始文本解析为对齐序列
type ResponseParser struct {
	logger logrus.FieldLogger
}

// ParserOption 解析器选项
type ParserOption func(*ResponseParser)

// WithParserLogger 设置日志记录器
func WithParserLogger(logger logrus.FieldLogger) ParserOption {
	return func(p *ResponseParser) {
		p.logger = logger
	}
}

// NewResponseParser 创建响应解析器
func NewResponseParser(opts ...ParserOption) *ResponseParser {
	p := &ResponseParser{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseResponse 使用默认日志记录器解析响应
func ParseResponse(raw string) ([]Pair, error) {
	return NewResponseParser().Parse(raw)
}

// StripCodeFence 去掉包裹在外层的Markdown代码块标记
// 只有找到开头标记时才检查结尾标记
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	loc := leadingFencePattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	text = text[loc[1]:]
	text = strings.TrimSuffix(strings.TrimRightFunc(text, isJSONSpace), codeFence)
	return strings.TrimSpace(text)
}

// Parse 解析模型响应
// 步骤：去空白 → 去代码块 → 必须以 [ 开头 → 截断修复 → 解析JSON数组
func (p *ResponseParser) Parse(raw string) ([]Pair, error) {
	p.logger.WithField("length", len(raw)).Debug("Parsing model response")
	p.logger.WithField("raw", raw).Trace("Raw model response")

	text := StripCodeFence(raw)

	if !strings.HasPrefix(text, "[") {
		return nil, newMalformedError("model did not return a JSON array", raw, nil)
	}

	if !strings.HasSuffix(text, "]") {
		repaired, ok := repairTruncated(text)
		if !ok {
			return nil, newMalformedError("response appears to be a truncated or invalid JSON array", raw, nil)
		}
		p.logger.WithField("dropped", len(text)-len(repaired)+1).Warn("Repaired truncated model response")
		text = repaired
	}

	var elements []json.RawMessage
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&elements); err != nil {
		return nil, newMalformedError("failed to parse JSON array", raw, err)
	}
	// 数组之后不允许再有其他内容
	if dec.More() {
		return nil, newMalformedError("unexpected content after JSON array", raw, nil)
	}

	pairs := make([]Pair, 0, len(elements))
	for _, element := range elements {
		pair := pairFromElement(element)
		// 两侧都为空的元素不携带任何内容
		if pair.IsEmpty() {
			continue
		}
		pairs = append(pairs, pair)
	}

	p.logger.WithField("pairs", len(pairs)).Debug("Parsed alignment pairs from model response")
	return pairs, nil
}

// repairTruncated 保留最后一个 } 之前的内容并补上 ]
// 丢弃的尾部去掉空白和逗号后为空(输出被截断)或以 ] 开头(数组完整，后面跟着说明文字)时修复成功
// 其余情况说明最后一个元素被截断，放弃修复
func repairTruncated(text string) (string, bool) {
	last := strings.LastIndexByte(text, '}')
	if last == -1 {
		return "", false
	}
	tail := strings.TrimLeftFunc(text[last+1:], func(r rune) bool { return r == ',' || isJSONSpace(r) })
	if tail != "" && tail[0] != ']' {
		return "", false
	}
	return text[:last+1] + "]", true
}

// pairFromElement 读取 jp/en 字段，缺失或不是字符串时取空字符串
func pairFromElement(element json.RawMessage) Pair {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(element, &fields); err != nil {
		return Pair{}
	}
	return Pair{
		Source: stringField(fields, "jp"),
		Target: stringField(fields, "en"),
	}
}

func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isJSONSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
