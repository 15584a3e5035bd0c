package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"
)

// pdfcpu 导出的内容流文件名: <name>_Content_page_<n>.txt
var pageFilePattern = regexp.MustCompile(`_Content_page_(\d+)\.txt$`)

// PDFParser PDF文档解析器
// 每个文本对象(BT...ET)对应一个段落
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件并提取段落
func (p *PDFParser) Parse(ctx context.Context, filePath string) ([]string, error) {
	// 创建临时目录用于存放提取的内容流
	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to create temp dir: %v", err))
	}
	defer os.RemoveAll(tmpDir)

	// 使用默认配置
	conf := model.NewDefaultConfiguration()

	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to extract content from PDF: %v", err))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, newExtractionError(ErrInvalidDocument, filePath, fmt.Errorf("failed to read extracted content dir: %v", err))
	}

	type pageFile struct {
		page int
		name string
	}
	pages := make([]pageFile, 0, len(entries))
	for _, e := range entries {
		m := pageFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		pages = append(pages, pageFile{page: n, name: e.Name()})
	}

	// 按页码排序，避免 page_10 排在 page_2 前面
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].page < pages[j].page
	})

	paragraphs := make([]string, 0)
	for _, pf := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, pf.name))
		if err != nil {
			continue
		}
		paragraphs = append(paragraphs, ContentStreamText(data)...)
	}

	if len(paragraphs) == 0 {
		return nil, newExtractionError(ErrNoContent, filePath, nil)
	}
	return paragraphs, nil
}

// ContentStreamText 从解码后的页面内容流中提取文本对象
// 只处理简单字体(单字节编码)，按 WinAnsi 解码
func ContentStreamText(stream []byte) []string {
	s := &contentScanner{data: stream}
	paragraphs := make([]string, 0)

	var current strings.Builder
	var operands [][]byte
	inText := false

	flush := func() {
		if text := normalizeBlock(current.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}

		switch tok.kind {
		case tokenString:
			operands = append(operands, tok.value)
			continue
		case tokenArrayStart, tokenArrayEnd, tokenOther:
			continue
		}

		// 操作符
		switch string(tok.value) {
		case "BT":
			inText = true
			current.Reset()
		case "ET":
			if inText {
				flush()
			}
			inText = false
		case "Tj", "TJ":
			if inText {
				for _, op := range operands {
					current.WriteString(decodeWinAnsi(op))
				}
			}
		case "'", "\"":
			if inText {
				current.WriteByte('\n')
				for _, op := range operands {
					current.WriteString(decodeWinAnsi(op))
				}
			}
		case "T*", "Td", "TD", "Tm":
			if inText && current.Len() > 0 {
				current.WriteByte('\n')
			}
		}
		operands = operands[:0]
	}

	// 未闭合的文本对象
	if inText {
		flush()
	}

	return paragraphs
}

// decodeWinAnsi 将单字节字符串按 Windows-1252 解码
func decodeWinAnsi(b []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

type tokenKind int

const (
	tokenOperator tokenKind = iota
	tokenString
	tokenArrayStart
	tokenArrayEnd
	tokenOther
)

type contentToken struct {
	kind  tokenKind
	value []byte
}

// contentScanner PDF内容流的最小词法分析器
type contentScanner struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *contentScanner) next() (contentToken, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isPDFSpace(c):
			s.pos++
		case c == '%':
			// 注释到行尾
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.pos++
			return contentToken{kind: tokenString, value: s.literalString()}, true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				return contentToken{kind: tokenOther}, true
			}
			s.pos++
			return contentToken{kind: tokenString, value: s.hexString()}, true
		case c == '>':
			s.pos++
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
			return contentToken{kind: tokenOther}, true
		case c == '[':
			s.pos++
			return contentToken{kind: tokenArrayStart}, true
		case c == ']':
			s.pos++
			return contentToken{kind: tokenArrayEnd}, true
		case c == '/':
			s.pos++
			s.regular()
			return contentToken{kind: tokenOther}, true
		case isPDFDelimiter(c):
			s.pos++
			return contentToken{kind: tokenOther}, true
		default:
			word := s.regular()
			if isNumeric(word) {
				return contentToken{kind: tokenOther, value: word}, true
			}
			return contentToken{kind: tokenOperator, value: word}, true
		}
	}
	return contentToken{}, false
}

// regular 读取一个常规字符序列
func (s *contentScanner) regular() []byte {
	start := s.pos
	for s.pos < len(s.data) && !isPDFSpace(s.data[s.pos]) && !isPDFDelimiter(s.data[s.pos]) {
		s.pos++
	}
	return s.data[start:s.pos]
}

// literalString 读取 (...) 字符串，处理嵌套括号和转义
func (s *contentScanner) literalString() []byte {
	var out []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.data) {
				return out
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// 续行
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data); i++ {
						d := s.data[s.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						s.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// hexString 读取 <...> 十六进制字符串
func (s *contentScanner) hexString() []byte {
	var digits []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		if isPDFSpace(c) {
			continue
		}
		digits = append(digits, c)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

func isNumeric(word []byte) bool {
	if len(word) == 0 {
		return false
	}
	for _, c := range word {
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' {
			return false
		}
	}
	return true
}
