package alignment

// FallbackTarget 失败占位结果的目标侧文本
const FallbackTarget = "Failed to process alignment. Check server logs."

// FallbackPairs 根据错误构造单元素的占位结果
// 由调用方(HTTP接口、命令行)在对齐失败时决定是否展示
func FallbackPairs(err error) []Pair {
	msg := "Unknown error occurred."
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return []Pair{{
		Source: "[LLM Error: " + msg + "]",
		Target: FallbackTarget,
	}}
}
