package document

import (
	"archive/zip"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

const (
	// docx 正文部件
	docxMainPart = "word/document.xml"
	// WordprocessingML 命名空间
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// DocxParser Word(.docx)文档解析器
// 每个 w:p 段落对应一个输出段落，空段落会被丢弃
type DocxParser struct{}

// NewDocxParser 创建一个新的docx解析器
func NewDocxParser() Parser {
	return &DocxParser{}
}

// Parse 解析docx文件
func (p *DocxParser) Parse(ctx context.Context, filePath string) ([]string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to open docx: %v", err))
	}
	defer archive.Close()

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == docxMainPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("%s not found", docxMainPart))
	}

	rc, err := part.Open()
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, err)
	}
	defer rc.Close()

	root, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("parsing XML: %w", err))
	}

	paragraphs := make([]string, 0)
	collectParagraphs(root, &paragraphs)
	return paragraphs, nil
}

// isWordElement 判断节点是否为指定名称的WordprocessingML元素
func isWordElement(n *xmlquery.Node, local string) bool {
	if n.Type != xmlquery.ElementNode || n.Data != local {
		return false
	}
	return n.Prefix == "w" || n.NamespaceURI == wordNamespace
}

// collectParagraphs 按文档顺序收集所有段落
// 文本框等嵌套段落排在外层段落之后
func collectParagraphs(n *xmlquery.Node, out *[]string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if isWordElement(child, "p") {
			var sb strings.Builder
			paragraphText(child, &sb)
			if text := normalizeBlock(sb.String()); text != "" {
				*out = append(*out, text)
			}
		}
		collectParagraphs(child, out)
	}
}

// paragraphText 提取段落文本，不进入嵌套段落
func paragraphText(n *xmlquery.Node, sb *strings.Builder) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case isWordElement(child, "p"):
			continue
		case isWordElement(child, "t"):
			sb.WriteString(child.InnerText())
		case isWordElement(child, "tab"):
			sb.WriteByte('\t')
		case isWordElement(child, "br"), isWordElement(child, "cr"):
			sb.WriteByte('\n')
		default:
			paragraphText(child, sb)
		}
	}
}
