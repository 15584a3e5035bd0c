package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown文档解析器
// 标题、段落和代码块各自成为一个段落，列表项贡献其内部段落
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown文件并提取段落
func (p *MarkdownParser) Parse(ctx context.Context, filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to read markdown file: %v", err))
	}
	return ParseMarkdown(content), nil
}

// ParseMarkdown 从Markdown内容中提取段落
func ParseMarkdown(content []byte) []string {
	// 创建Markdown解析器
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	doc := mdParser.Parse(content)

	paragraphs := make([]string, 0)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		switch n := node.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TableCell:
			var sb strings.Builder
			inlineText(n, &sb)
			if text := normalizeBlock(sb.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return ast.SkipChildren
		case *ast.CodeBlock:
			if text := normalizeBlock(string(n.Literal)); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return ast.SkipChildren
		}
		return ast.GoToNext
	})

	return paragraphs
}

// inlineText 收集块内的行内文本
func inlineText(node ast.Node, sb *strings.Builder) {
	switch n := node.(type) {
	case *ast.Softbreak, *ast.Hardbreak:
		sb.WriteByte('\n')
		return
	case *ast.HTMLSpan:
		// 行内HTML标签不属于正文
		return
	case *ast.Text:
		sb.Write(n.Literal)
	case *ast.Code:
		sb.Write(n.Literal)
	}

	for _, child := range node.GetChildren() {
		inlineText(child, sb)
	}
}
