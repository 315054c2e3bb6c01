package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{name: "empty", text: "", maxChars: 10, want: nil},
		{name: "whitespace only", text: " \n\t ", maxChars: 10, want: nil},
		{name: "fits in one chunk", text: "hello   big\nworld", maxChars: 50, want: []string{"hello big world"}},
		{name: "greedy packing", text: "aa bb cc dd", maxChars: 5, want: []string{"aa bb", "cc dd"}},
		{name: "oversized word kept whole", text: "a abcdefghij b", maxChars: 5, want: []string{"a", "abcdefghij", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, tt.maxChars))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	text := "Shipping is free. Returns take 30 days! Need help? Call us."
	got := SplitSentences(text, 40)
	assert.Equal(t, []string{"Shipping is free. Returns take 30 days!", "Need help? Call us."}, got)

	assert.Equal(t, []string{"No punctuation here"}, SplitSentences("No punctuation here", 100))
	assert.Nil(t, SplitSentences("", 100))
}

func TestSplit_SizeBound(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 500) + strings.Repeat("x", 120)
	for _, split := range []func(string, int) []string{SplitText, SplitSentences} {
		for _, chunk := range split(text, 100) {
			if utf8.RuneCountInString(chunk) > 100 {
				// only an atomic unit may exceed the bound
				assert.NotContains(t, chunk, " ")
			}
		}
	}
}

func TestSplit_Idempotent(t *testing.T) {
	text := strings.Repeat("Our store ships worldwide. Orders over fifty dollars ship free! ", 40)
	for _, split := range []func(string, int) []string{SplitText, SplitSentences} {
		for _, chunk := range split(text, 200) {
			assert.Equal(t, []string{chunk}, split(chunk, 200))
		}
	}
}

func TestSplitText_DefaultSize(t *testing.T) {
	text := strings.Repeat("word ", 3000)
	chunks := SplitText(text, 0)
	assert.Len(t, chunks, 2)
	assert.LessOrEqual(t, utf8.RuneCountInString(chunks[0]), DefaultChunkSize)
}
