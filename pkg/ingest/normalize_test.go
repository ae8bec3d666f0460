package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"MK1 7DB", "mk17db"},
		{"AB10 1AB", "ab101ab"},
		{" mk1 7db ", "mk17db"},
		{"MK1\t7DB", "mk17db"},
		{"", ""},
		{"   ", ""},
		{"W1A-1AA", "w1a-1aa"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.input), "input %q", c.input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"MK1 7DB", "ab101ab", "  W1A 1AA  ", "", "zz99zz"}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestValid(t *testing.T) {
	valid := []string{"mk17db", "mk179db", "a", "ab101ab", "1234567"}
	for _, v := range valid {
		assert.True(t, Valid(v), "expected %q to be valid", v)
	}

	invalid := []string{
		"",          // empty
		"mk179dbx2", // longer than 7
		"w1a-1aa",   // punctuation survives normalization of a bad value
		"MK17DB",    // uppercase means not normalized
		"mk1 7db",   // whitespace means not normalized
	}
	for _, v := range invalid {
		assert.False(t, Valid(v), "expected %q to be invalid", v)
	}
}
