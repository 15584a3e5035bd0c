package llm

import "strings"

// AlignmentSystemPrompt 条约对齐的系统提示词
// 输出字段名固定为 jp/en，与哪一方是源语言无关
const AlignmentSystemPrompt = "あなたは、法律文書（条約）の和文と英文をアライメントする高度な専門家です。" +
	"提供される日本語の全文と英語の全文を比較し、意味的・構造的に対応するセグメント（タイトル、条、項、号、段落）ごとにペアにしてください。" +
	"日本語側が1つの段落（例：'第一条 定義'）で、英語側が2つの段落（例：'Article 1'と'Definitions'）に対応する場合も正しく処理してください。" +
	"あなたの応答は、解説や前置きを一切含まない、JSON配列「のみ」でなければなりません。" +
	"JSONの形式は `[ {\"jp\": \"日本語セグメント1\", \"en\": \"英語セグメント1\"}, {\"jp\": \"日本語セグメント2\", \"en\": \"英語セグメント2\"}, ... ]` としてください。" +
	"重要：元のテキストに含まれる全ての行や段落は、たとえ片方の言語にしか存在しない短い接続詞（例: 'and'）であっても、**省略せずに**必ずJSON配列内のペアとして表現してください。" +
	"対応する言語がない場合は、必ず**空文字列 `\"\"`** を使用してください。例えば `{\"jp\": \"\", \"en\": \"and\"}` のようになります。"

// 用户提示词的各个部分
const (
	alignmentUserIntro = "以下の日本語テキストと英語テキストをアライメントし、指定されたJSON形式で応答してください。\n\n"
	japaneseStart      = "--- [日本語全文 START] ---\n"
	japaneseEnd        = "\n--- [日本語全文 END] ---\n\n"
	englishStart       = "--- [英語全文 START] ---\n"
	englishEnd         = "\n--- [英語全文 END] ---\n\n"
	alignmentUserClose = "JSON Response:"
)

// CorpusSeparator 语料中段落之间的分隔符(一个空行)
const CorpusSeparator = "\n\n"

// JoinCorpus 把段落序列拼接为语料文本
func JoinCorpus(paragraphs []string) string {
	return strings.Join(paragraphs, CorpusSeparator)
}

// BuildAlignmentPrompts 构造对齐请求的系统提示词和用户提示词
func BuildAlignmentPrompts(japanese, english []string) (systemPrompt, userPrompt string) {
	var sb strings.Builder
	sb.WriteString(alignmentUserIntro)
	sb.WriteString(japaneseStart)
	sb.WriteString(JoinCorpus(japanese))
	sb.WriteString(japaneseEnd)
	sb.WriteString(englishStart)
	sb.WriteString(JoinCorpus(english))
	sb.WriteString(englishEnd)
	sb.WriteString(alignmentUserClose)

	return AlignmentSystemPrompt, sb.String()
}
