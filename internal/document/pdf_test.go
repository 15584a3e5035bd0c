package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentStreamText(t *testing.T) {
	t.Run("one paragraph per text object", func(t *testing.T) {
		stream := "BT /F1 12 Tf 72 720 Td (Article 1) Tj ET\n" +
			"q 0 g BT 72 700 Td (Definitions) Tj ET Q"
		assert.Equal(t, []string{"Article 1", "Definitions"}, ContentStreamText([]byte(stream)))
	})

	t.Run("positioning operators break lines", func(t *testing.T) {
		stream := "BT (first) Tj 0 -14 Td (second) Tj T* (third) Tj ET"
		assert.Equal(t, []string{"first\nsecond\nthird"}, ContentStreamText([]byte(stream)))
	})

	t.Run("TJ arrays with kerning", func(t *testing.T) {
		stream := "BT [(Tr) -20 (eaty)] TJ ET"
		assert.Equal(t, []string{"Treaty"}, ContentStreamText([]byte(stream)))
	})

	t.Run("escapes and hex strings", func(t *testing.T) {
		stream := `BT (a \(b\) c\\d) Tj ET BT <48656C6C6F> Tj ET BT (caf\351) Tj ET`
		assert.Equal(t, []string{`a (b) c\d`, "Hello", "café"}, ContentStreamText([]byte(stream)))
	})

	t.Run("text outside text objects is ignored", func(t *testing.T) {
		stream := "(stray) Tj BT ( ) Tj ET % comment (x) Tj\n"
		assert.Empty(t, ContentStreamText([]byte(stream)))
	})

	t.Run("unterminated text object is flushed", func(t *testing.T) {
		assert.Equal(t, []string{"tail"}, ContentStreamText([]byte("BT (tail) Tj")))
	})
}
