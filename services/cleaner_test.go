package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTextStripsHTML(t *testing.T) {
	assert.Equal(t, "this is a test document.", CleanText("<p>This is a <b>test</b> document.</p>"))
}

func TestCleanTextStripsMarkdown(t *testing.T) {
	in := "# A Header\nSome *bold* text with a [link](http://example.com) and `code`."
	out := CleanText(in)

	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "`")
	assert.NotContains(t, out, "http://example.com")
	assert.Contains(t, out, "a header")
	assert.Contains(t, out, "bold")
}

func TestCleanTextNormalizesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", CleanText("  one\t\ttwo\n\n three  "))
}

func TestCleanTextLowercases(t *testing.T) {
	assert.Equal(t, "mixed case", CleanText("MiXeD CaSe"))
}

func TestCleanTextEmpty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
}
