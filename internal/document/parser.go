package document

import (
	"context"
	"path/filepath"
	"strings"
)

// Parser 文档解析器接口
// 负责将不同格式的文档解析为段落序列
type Parser interface {
	// Parse 解析文档，返回按文档顺序排列的段落
	// 每个段落非空且首尾无空白
	Parse(ctx context.Context, filePath string) ([]string, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// Legacy 旧格式文字处理文档(一太郎 .jtd 等)，经外部转换器处理
	Legacy ContentType = "legacy"
	// Word Word(.docx)文档
	Word ContentType = "docx"
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// DefaultLegacyExtensions 默认交给外部转换器处理的扩展名
var DefaultLegacyExtensions = []string{".jtd"}

// Factory 解析器工厂，根据文件扩展名创建对应的解析器
type Factory struct {
	converter        *Converter
	legacyExtensions map[string]struct{}
}

// NewFactory 创建解析器工厂
// converter 为 nil 时旧格式文档不可用
func NewFactory(converter *Converter, legacyExtensions ...string) *Factory {
	if len(legacyExtensions) == 0 {
		legacyExtensions = DefaultLegacyExtensions
	}

	exts := make(map[string]struct{}, len(legacyExtensions))
	for _, ext := range legacyExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}

	return &Factory{
		converter:        converter,
		legacyExtensions: exts,
	}
}

// ParserFor 根据文件类型返回解析器
func (f *Factory) ParserFor(filePath string) (Parser, error) {
	switch f.DetectContentType(filePath) {
	case Legacy:
		if f.converter == nil {
			return nil, newExtractionError(ErrUnsupportedFormat, filePath, errNoConverter)
		}
		return NewLegacyParser(f.converter), nil
	case Word:
		return NewDocxParser(), nil
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, newExtractionError(ErrUnsupportedFormat, filePath, nil)
	}
}

// Supports 判断文件是否可以被解析
func (f *Factory) Supports(filePath string) bool {
	ct := f.DetectContentType(filePath)
	if ct == Legacy {
		return f.converter != nil
	}
	return ct != Unknown
}

// DetectContentType 根据文件扩展名检测内容类型
func (f *Factory) DetectContentType(filePath string) ContentType {
	ext := strings.ToLower(filepath.Ext(filePath))

	if _, ok := f.legacyExtensions[ext]; ok {
		return Legacy
	}

	switch ext {
	case ".docx":
		return Word
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// Extract 选择解析器并解析文档
func (f *Factory) Extract(ctx context.Context, filePath string) ([]string, error) {
	parser, err := f.ParserFor(filePath)
	if err != nil {
		return nil, err
	}
	return parser.Parse(ctx, filePath)
}
