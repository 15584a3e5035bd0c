package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []string
	}{
		{
			name:     "empty input",
			lines:    nil,
			expected: []string{},
		},
		{
			name:     "multi-line paragraph",
			lines:    []string{"a", "b", "", "c"},
			expected: []string{"a\nb", "c"},
		},
		{
			name:     "no blank lines",
			lines:    []string{"第一条", "この条約は", "署名の日に効力を生ずる。"},
			expected: []string{"第一条\nこの条約は\n署名の日に効力を生ずる。"},
		},
		{
			name:     "trailing blank lines",
			lines:    []string{"Article 1", "", "", ""},
			expected: []string{"Article 1"},
		},
		{
			name:     "leading blank lines",
			lines:    []string{"", "  ", "Article 1"},
			expected: []string{"Article 1"},
		},
		{
			name:     "full-width spaces are boundaries",
			lines:    []string{"第一条", "　　　", "第二条"},
			expected: []string{"第一条", "第二条"},
		},
		{
			name:     "mixed whitespace is trimmed",
			lines:    []string{" \t　第一条　定義　\t "},
			expected: []string{"第一条　定義"},
		},
		{
			name:     "only blank lines",
			lines:    []string{"", "　", "\t"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reconstruct(tt.lines))
		})
	}
}

func TestReconstructExtraBlankLinesDoNotChangeOutput(t *testing.T) {
	base := []string{"Article 1", "Definitions", "", "Article 2", "", "Article 3"}
	expected := Reconstruct(base)

	padded := []string{"Article 1", "Definitions", "", "", "　", "", "Article 2", "", "\t", "Article 3", "", ""}
	assert.Equal(t, expected, Reconstruct(padded))
}

func TestReconstructParagraphsAreTrimmed(t *testing.T) {
	lines := []string{"  a  ", "\tb", "", "　c　", "", "", "d "}
	for _, p := range Reconstruct(lines) {
		assert.NotEmpty(t, p)
		assert.Equal(t, TrimLine(p), p)
		for _, line := range strings.Split(p, "\n") {
			assert.Equal(t, TrimLine(line), line)
		}
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, SplitLines(""))
	assert.Equal(t, []string{"a", "b", "c", ""}, SplitLines("a\r\nb\rc\n"))
}

func TestReconstructText(t *testing.T) {
	text := "第一条　定義\r\n\r\nこの条約の適用上、\r\n次の用語は\r\n"
	assert.Equal(t, []string{"第一条　定義", "この条約の適用上、\n次の用語は"}, ReconstructText(text))
}
