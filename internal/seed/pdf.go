package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// maxAboutLength bounds the about text taken from a PDF.
const maxAboutLength = 4000

// AboutFromPDF extracts the plain text of the PDF at path, collapsed to single
// spaces and truncated at a word boundary, for use as the portfolio's about
// text.
func AboutFromPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	return aboutFromPDFBytes(data)
}

func aboutFromPDFBytes(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	text = normalizeText(string(raw), maxAboutLength)
	if text == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	return text, nil
}

// normalizeText collapses whitespace runs and control characters to single
// spaces and cuts the result to at most limit runes, preferring the last word
// boundary.
func normalizeText(s string, limit int) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	out := strings.Join(fields, " ")

	runes := []rune(out)
	if len(runes) <= limit {
		return out
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
