package document

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// PlainTextParser 纯文本解析器
// 文本按UTF-8读取，空行分隔段落
type PlainTextParser struct{}

// NewPlainTextParser 创建一个新的纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// Parse 解析纯文本文件
func (p *PlainTextParser) Parse(ctx context.Context, filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to read text file: %v", err))
	}

	if !utf8.Valid(content) {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("text file is not valid UTF-8"))
	}

	// 去掉UTF-8 BOM
	text := string(content)
	if len(text) >= 3 && text[:3] == "\xef\xbb\xbf" {
		text = text[3:]
	}

	return ReconstructText(text), nil
}
