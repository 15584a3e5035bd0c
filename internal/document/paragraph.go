package document

import (
	"strings"
	"unicode"
)

// ideographicSpace 全角空格(U+3000)，旧格式转换器输出中常见
const ideographicSpace = '　'

// isParagraphSpace 判断字符是否属于段落首尾需要去除的空白
// 除ASCII空白外还包括全角空格，普通的TrimSpace处理不到旧编码遗留的全角空格
func isParagraphSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', ideographicSpace:
		return true
	}
	return unicode.IsSpace(r)
}

// TrimLine 去除行首尾的半角/全角空白和制表符
func TrimLine(line string) string {
	return strings.TrimFunc(line, isParagraphSpace)
}

// SplitLines 按换行符切分文本，支持 \n、\r\n 和 \r 三种行结束符
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Reconstruct 将按行输出的原始文本重建为段落序列
// 空行(去除空白后为空)视为段落边界，连续空行只算一个边界；
// 同一段落内的多行以 \n 连接，保留段内换行
func Reconstruct(lines []string) []string {
	paragraphs := make([]string, 0)
	var buf strings.Builder

	for _, line := range lines {
		trimmed := TrimLine(line)

		if trimmed == "" {
			// 段落边界
			if buf.Len() > 0 {
				paragraphs = append(paragraphs, buf.String())
				buf.Reset()
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(trimmed)
	}

	// 输出最后一个段落
	if buf.Len() > 0 {
		paragraphs = append(paragraphs, buf.String())
	}

	return paragraphs
}

// ReconstructText 先切分行再重建段落
func ReconstructText(text string) []string {
	return Reconstruct(SplitLines(text))
}

// normalizeBlock 规范化单个块级文本：逐行去除首尾空白并丢弃空行
// 用于本身已经是"一个段落"的来源(docx段落、Markdown块等)
func normalizeBlock(text string) string {
	lines := SplitLines(text)
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := TrimLine(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}
