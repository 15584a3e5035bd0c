package alignment

// Pair 一组对齐结果
// Source 为日文段落，Target 为英文段落；任一侧可以为空字符串，表示另一种语言中没有对应内容，但两侧不能同时为空
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsEmpty 判断两侧是否都为空
func (p Pair) IsEmpty() bool {
	return p.Source == "" && p.Target == ""
}

// 对齐结果序列中的语言标识
const (
	LangJapanese = "ja"
	LangEnglish  = "en"
)
