package alignment

import (
	"strings"
	"unicode"
)

// Coverage 对齐结果的覆盖情况
// 列出在对应一侧的输出中找不到的输入段落，不修改对齐结果本身
type Coverage struct {
	SourceTotal   int      `json:"source_total"`
	TargetTotal   int      `json:"target_total"`
	MissingSource []string `json:"missing_source,omitempty"`
	MissingTarget []string `json:"missing_target,omitempty"`
}

// Complete 判断是否所有段落都出现在结果中
func (c Coverage) Complete() bool {
	return len(c.MissingSource) == 0 && len(c.MissingTarget) == 0
}

// CheckCoverage 检查每个输入段落是否出现在结果的对应一侧
// 比较时忽略所有空白，模型可能把一个段落拆到多个元素中，因此按拼接后的整体文本查找
func CheckCoverage(pairs []Pair, source, target []string) Coverage {
	var sourceText, targetText strings.Builder
	for _, p := range pairs {
		sourceText.WriteString(squeeze(p.Source))
		targetText.WriteString(squeeze(p.Target))
	}

	return Coverage{
		SourceTotal:   len(source),
		TargetTotal:   len(target),
		MissingSource: missing(source, sourceText.String()),
		MissingTarget: missing(target, targetText.String()),
	}
}

func missing(paragraphs []string, haystack string) []string {
	var out []string
	for _, p := range paragraphs {
		needle := squeeze(p)
		if needle == "" {
			continue
		}
		if !strings.Contains(haystack, needle) {
			out = append(out, p)
		}
	}
	return out
}

// squeeze 去掉所有空白(包括全角空格)
func squeeze(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
