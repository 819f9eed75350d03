package textclean

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var cleanAlphabet = regexp.MustCompile(`^[a-z ]*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "url and punctuation", input: "Check https://x.com NOW!!", expected: "check now"},
		{name: "www link", input: "see www.example.org/page for more", expected: "see for more"},
		{name: "digits removed", input: "Got 5 stars in 2024", expected: "got stars in"},
		{name: "whitespace collapsed", input: "  a\t\tb \n\n c  ", expected: "a b c"},
		{name: "diacritics dropped", input: "Café crème", expected: "caf crme"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!!! ??? 123", expected: ""},
		{name: "http word without scheme kept", input: "httpbin rocks", expected: "httpbin rocks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_OutputAlphabet(t *testing.T) {
	inputs := []string{
		"I LOVE this product!!! 10/10 http://shop.example.com/p?id=3",
		"Ünïcödé ümläuts & emojis 😀😀",
		"tabs\tand\r\nnewlines\vand\fform feeds",
		"ht!tp://not-a-link.com",
		"MiXeD CaSe_with_underscores-and-dashes",
	}

	for _, in := range inputs {
		out := Normalize(in)
		assert.Regexp(t, cleanAlphabet, out, "input %q", in)
		assert.NotContains(t, out, "  ")
		assert.NotContains(t, out, "http://")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Check https://x.com NOW!!",
		"ht!tpx and www!.x",
		"h t t p s : / / x",
		"  spaced   out  ",
		"The movie was GREAT, 5/5 www.imdb.com",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "", NormalizeValue(nil))
	assert.Equal(t, "hello", NormalizeValue("Hello!"))
	assert.Equal(t, "bytes", NormalizeValue([]byte("BYTES")))
	assert.Equal(t, "", NormalizeValue(42))
	assert.Equal(t, "true", NormalizeValue(true))
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "emphasis", input: "This is **really** _good_", expected: "This is really good"},
		{name: "link keeps text", input: "read [the docs](https://example.com/docs) first", expected: "read the docs first"},
		{name: "heading", input: "# Title\n\nbody text", expected: "Title body text"},
		{name: "entities unescaped", input: "fish & chips", expected: "fish & chips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkdown(tt.input))
		})
	}
}
