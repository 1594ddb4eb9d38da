// Package mutation turns free-text "add ..." chat commands into appends on
// the portfolio's skill, project, and experience collections.
package mutation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keys is the fixed vocabulary recognized by ExtractFields.
var Keys = []string{
	"name", "level", "category",
	"title", "summary", "stack", "link",
	"role", "company", "period", "highlights",
}

// Fields maps a lower-cased key from Keys to its raw trimmed value.
type Fields map[string]string

var keyToken = regexp.MustCompile(`(?i)\b(` + strings.Join(Keys, "|") + `)\b\s*[:=]\s*`)

// ExtractFields scans raw for `key=value` or `key: value` pairs. A value runs
// until the next whitespace-separated key token or the end of the string.
// Surrounding "|" and "," separators are trimmed, empty values are dropped,
// and a repeated key keeps its last value.
func ExtractFields(raw string) Fields {
	fields := Fields{}
	locs := keyToken.FindAllStringSubmatchIndex(raw, -1)

	for i := 0; i < len(locs); {
		key := strings.ToLower(raw[locs[i][2]:locs[i][3]])
		valueStart := locs[i][1]

		// A key token only ends the previous value when whitespace precedes
		// it; otherwise it is part of the value.
		next := i + 1
		for next < len(locs) && !precededBySpace(raw, locs[next][0]) {
			next++
		}
		valueEnd := len(raw)
		if next < len(locs) {
			valueEnd = locs[next][0]
		}

		if v := cleanValue(raw[valueStart:valueEnd]); v != "" {
			fields[key] = v
		}
		i = next
	}
	return fields
}

func precededBySpace(s string, pos int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return unicode.IsSpace(r)
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "|")
	v = strings.Trim(v, ",")
	return strings.TrimSpace(v)
}
