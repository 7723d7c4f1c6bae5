package validators

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	cases := map[string]struct {
		in     string
		maxLen int
		want   string
	}{
		"trims":             {in: "  Ana Maria  ", maxLen: 200, want: "Ana Maria"},
		"folds whitespace":  {in: "Ana\t\n  Maria", maxLen: 200, want: "Ana Maria"},
		"drops controls":    {in: "stock\x00 fix", maxLen: 255, want: "stock fix"},
		"cuts on runes":     {in: "Pão de queijo", maxLen: 3, want: "Pão"},
		"no trailing space": {in: "ab cd", maxLen: 3, want: "ab"},
		"unbounded":         {in: " x ", maxLen: 0, want: "x"},
		"blank":             {in: " \t ", maxLen: 10, want: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := SanitizeString(tc.in, tc.maxLen)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
