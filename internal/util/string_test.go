package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple name", input: "Marie Curie", want: "marie-curie"},
		{name: "punctuation dropped", input: "Sandra Day O'Connor", want: "sandra-day-oconnor"},
		{name: "dots and dashes collapse", input: "J. K. Rowling", want: "j-k-rowling"},
		{name: "non-ascii dropped", input: "Frida Kahló", want: "frida-kahl"},
		{name: "multiple spaces", input: "Ada   Lovelace", want: "ada-lovelace"},
		{name: "trailing separator trimmed", input: "Madonna ", want: "madonna"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	require.Equal(t, "abc", TruncateString("abc", 5))
	require.Equal(t, "ab...", TruncateString("abcdef", 2))
	require.Equal(t, "안녕...", TruncateString("안녕하세요", 2))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "marie curie", Normalize("  Marie Curie "))
}

func TestContains(t *testing.T) {
	require.True(t, Contains([]string{"a", "b"}, "b"))
	require.False(t, Contains([]string{"a", "b"}, "c"))
	require.False(t, Contains(nil, "a"))
}
