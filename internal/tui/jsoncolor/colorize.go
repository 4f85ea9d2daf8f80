// Package jsoncolor renders JSON with theme-aware syntax coloring.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Meet0105/repoza-sub001/internal/core/styles"
)

var keywords = []struct {
	word  string
	style *lipgloss.Style
}{
	{"true", &styles.TextSecondaryStyle},
	{"false", &styles.TextSecondaryStyle},
	{"null", &styles.TextErrorStyle},
}

// Colorize pretty-prints data and colors keys, strings, numbers, literals and
// punctuation. Invalid JSON is returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}

	raw := buf.String()
	var out strings.Builder
	out.Grow(len(raw) * 2)

	for i := 0; i < len(raw); {
		ch := raw[i]

		switch {
		case ch == '"':
			end := stringEnd(raw, i)
			tok := raw[i : end+1]
			if isKey(raw[end+1:]) {
				out.WriteString(styles.TextPrimaryStyle.Render(tok))
			} else {
				out.WriteString(styles.TextSuccessStyle.Render(tok))
			}
			i = end + 1

		case ch == ':':
			out.WriteString(styles.TextMutedStyle.Render(":"))
			i++

		case ch == '-' || (ch >= '0' && ch <= '9'):
			end := numberEnd(raw, i)
			out.WriteString(styles.TextWarningStyle.Render(raw[i:end]))
			i = end

		case strings.ContainsRune("{}[]", rune(ch)):
			out.WriteString(styles.TextForegroundStyle.Render(string(ch)))
			i++

		default:
			if n := writeKeyword(&out, raw[i:]); n > 0 {
				i += n
				continue
			}
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

func writeKeyword(out *strings.Builder, rest string) int {
	for _, kw := range keywords {
		if strings.HasPrefix(rest, kw.word) {
			out.WriteString(kw.style.Render(kw.word))
			return len(kw.word)
		}
	}
	return 0
}

func isKey(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && rest[0] == ':'
}

// stringEnd returns the index of the closing quote of the string at pos.
func stringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

func numberEnd(s string, pos int) int {
	end := pos + 1
	for end < len(s) && strings.IndexByte("0123456789.eE+-", s[end]) >= 0 {
		end++
	}
	return end
}
