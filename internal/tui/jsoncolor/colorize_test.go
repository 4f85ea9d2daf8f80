package jsoncolor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Meet0105/repoza-sub001/pkg/tuitest"
)

func TestColorize_preserves_content(t *testing.T) {
	input := []byte(`{"full_name":"charmbracelet/glow","stars":15234,"archived":false,"topics":["cli","markdown"],"license":null,"ratio":-1.5e3}`)
	out := tuitest.StripANSI(Colorize(input))

	for _, want := range []string{`"full_name"`, `"charmbracelet/glow"`, "15234", "false", `"cli"`, "null", "-1.5e3"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "\n", "expected indented output")
}

func TestColorize_invalid_json_unchanged(t *testing.T) {
	assert.Equal(t, "not json", Colorize([]byte("not json")))
}

func TestColorize_escaped_strings(t *testing.T) {
	out := tuitest.StripANSI(Colorize([]byte(`{"msg":"say \"hi\""}`)))
	assert.Contains(t, out, `"say \"hi\""`)
}

func TestColorize_literals_inside_strings_untouched(t *testing.T) {
	out := tuitest.StripANSI(Colorize([]byte(`{"note":"null and true"}`)))
	assert.Contains(t, out, `"null and true"`)
}

func TestStringEnd(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"simple", `"hello"`, 6},
		{"escaped quote", `"he\"llo"`, 8},
		{"escaped backslash", `"he\\"`, 5},
		{"empty", `""`, 1},
		{"unterminated", `"abc`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringEnd(tt.input, 0))
		})
	}
}

func TestNumberEnd(t *testing.T) {
	assert.Equal(t, 2, numberEnd("42,", 0))
	assert.Equal(t, 6, numberEnd("-1.5e3}", 0))
}
