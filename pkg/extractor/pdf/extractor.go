// Package pdf extracts cleaned plain text from PDF files.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultMinLength is the shortest cleaned text treated as usable content.
const DefaultMinLength = 50

var (
	ErrUnreadable          = errors.New("pdf file is unreadable")
	ErrNoText              = errors.New("pdf has no extractable text")
	ErrInsufficientContent = errors.New("pdf text is too short to be useful")
)

type Extractor struct {
	MinLength int
}

func NewExtractor() *Extractor {
	return &Extractor{MinLength: DefaultMinLength}
}

// ExtractFile opens path and returns its cleaned text.
func (e *Extractor) ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return e.Extract(f, info.Size())
}

// Extract reads a PDF from r and returns its cleaned text. The parser panics
// on some malformed inputs; those surface as ErrUnreadable.
func (e *Extractor) Extract(r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	raw, err := plainText(reader)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrNoText
	}

	cleaned := Clean(raw)
	minLength := e.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if utf8.RuneCountInString(cleaned) < minLength {
		return "", fmt.Errorf("%w: %d characters", ErrInsufficientContent, utf8.RuneCountInString(cleaned))
	}
	return cleaned, nil
}

func plainText(reader *pdf.Reader) (string, error) {
	pages := reader.NumPage()
	if pages == 0 {
		return "", ErrNoText
	}

	fonts := make(map[string]*pdf.Font)
	var sb strings.Builder
	failed := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			failed++
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if failed == pages {
		return "", fmt.Errorf("%w: no page could be decoded", ErrUnreadable)
	}
	return sb.String(), nil
}

var pageNumberLine = regexp.MustCompile(`(?i)^(page\s*)?[-–]?\s*\d{1,4}\s*[-–]?(\s*(of|/)\s*\d{1,4})?$`)

// Clean strips control characters, collapses whitespace and drops lines
// that are only page numbers or repeat an earlier line.
func Clean(raw string) string {
	raw = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\r' || r == '\t' || r == '\f' || r == '\v':
			return ' '
		case unicode.IsControl(r) || r == utf8.RuneError:
			return -1
		default:
			return r
		}
	}, raw)

	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || pageNumberLine.MatchString(line) {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
