package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences_Basic(t *testing.T) {
	text := "Cats purr when content. Cats groom themselves."
	sentences := splitSentences(text, DefaultDelimiters)

	assert.Len(t, sentences, 2)
	assert.Equal(t, "Cats purr when content.", sentences[0].Text)
	assert.Equal(t, "Cats groom themselves.", sentences[1].Text)

	for _, s := range sentences {
		assert.Equal(t, s.Text, text[s.StartIndex:s.EndIndex])
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	assert.Empty(t, splitSentences("", DefaultDelimiters))
	assert.Empty(t, splitSentences("   \n\t ", DefaultDelimiters))
}

func TestSplitSentences_NoTrailingDelimiter(t *testing.T) {
	text := "First sentence. trailing remainder without punctuation"
	sentences := splitSentences(text, DefaultDelimiters)

	assert.Len(t, sentences, 2)
	assert.Equal(t, "trailing remainder without punctuation", sentences[1].Text)
}

func TestSplitSentences_CJKDelimiters(t *testing.T) {
	text := "你好。世界！"
	sentences := splitSentences(text, DefaultDelimiters)

	assert.Len(t, sentences, 2)
	assert.Equal(t, "你好。", sentences[0].Text)
	assert.Equal(t, "世界！", sentences[1].Text)
}

func TestSplitSentences_DoubleNewlineDelimiter(t *testing.T) {
	text := "paragraph one\n\nparagraph two."
	sentences := splitSentences(text, DefaultDelimiters)

	assert.Len(t, sentences, 2)
	assert.Equal(t, "paragraph one", sentences[0].Text)
	assert.Equal(t, "paragraph two.", sentences[1].Text)
}
