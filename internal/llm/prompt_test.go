package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAlignmentPrompts(t *testing.T) {
	system, user := BuildAlignmentPrompts(
		[]string{"第一条　定義", "この条約の適用上、\n次の用語は"},
		[]string{"Article 1", "Definitions"},
	)

	assert.Equal(t, AlignmentSystemPrompt, system)

	expected := "以下の日本語テキストと英語テキストをアライメントし、指定されたJSON形式で応答してください。\n\n" +
		"--- [日本語全文 START] ---\n" +
		"第一条　定義\n\nこの条約の適用上、\n次の用語は" +
		"\n--- [日本語全文 END] ---\n\n" +
		"--- [英語全文 START] ---\n" +
		"Article 1\n\nDefinitions" +
		"\n--- [英語全文 END] ---\n\n" +
		"JSON Response:"
	assert.Equal(t, expected, user)
}

func TestAlignmentSystemPromptContract(t *testing.T) {
	// 输出格式和占位符约定
	assert.Contains(t, AlignmentSystemPrompt, `{"jp": "", "en": "and"}`)
	assert.Contains(t, AlignmentSystemPrompt, "JSON配列「のみ」")
	assert.Contains(t, AlignmentSystemPrompt, "省略せずに")
	assert.Contains(t, AlignmentSystemPrompt, "'第一条 定義'")
}

func TestBuildAlignmentPromptsEmptyCorpus(t *testing.T) {
	_, user := BuildAlignmentPrompts(nil, []string{"Article 1"})
	assert.True(t, strings.Contains(user, "--- [日本語全文 START] ---\n\n--- [日本語全文 END] ---"))
}

func TestJoinCorpus(t *testing.T) {
	assert.Equal(t, "", JoinCorpus(nil))
	assert.Equal(t, "a", JoinCorpus([]string{"a"}))
	assert.Equal(t, "a\nb\n\nc", JoinCorpus([]string{"a\nb", "c"}))
}
