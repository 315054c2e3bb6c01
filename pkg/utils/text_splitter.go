package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSize is the default chunk bound in characters.
const DefaultChunkSize = 8000

// SplitText packs whitespace-normalised words into chunks of at most
// maxChars characters. A word longer than maxChars becomes its own chunk.
func SplitText(text string, maxChars int) []string {
	return pack(strings.Fields(text), maxChars)
}

// SplitSentences is SplitText over sentences instead of words, for prose
// where keeping sentences whole matters more than filling chunks.
func SplitSentences(text string, maxChars int) []string {
	return pack(sentences(strings.Join(strings.Fields(text), " ")), maxChars)
}

func pack(units []string, maxChars int) []string {
	if len(units) == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		if currentLen > 0 && currentLen+1+unitLen > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(unit)
		currentLen += unitLen
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// sentences splits normalised text after '.', '!' or '?' followed by a space.
func sentences(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if (runes[i] == '.' || runes[i] == '!' || runes[i] == '?') && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
