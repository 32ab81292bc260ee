package extractor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"walletpass/extractor"
)

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Live music & food", extractor.StripTags("<p>Live <b>music</b> &amp; food</p>"))
	assert.Equal(t, "Hello", extractor.StripTags("<script>alert(1)</script><p>Hello</p><style>p{}</style>"))
	assert.Equal(t, "plain text", extractor.StripTags("  plain text "))
}

func TestTrimWords(t *testing.T) {
	assert.Equal(t, "one two", extractor.TrimWords(" one   two ", 3))
	assert.Equal(t, "one two…", extractor.TrimWords("one two three", 2))

	long := strings.Repeat("word ", 150)
	trimmed := extractor.TrimWords(long, 100)
	assert.Len(t, strings.Fields(strings.TrimSuffix(trimmed, "…")), 100)
	assert.True(t, strings.HasSuffix(trimmed, "…"))
}
