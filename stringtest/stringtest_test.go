package stringtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/taglog/stringtest"
)

func TestJoinLF(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input []string
		want  string
	}{
		"empty":            {input: nil, want: ""},
		"single":           {input: []string{"a"}, want: "a"},
		"multiple":         {input: []string{"a", "b"}, want: "a\nb"},
		"trailing newline": {input: []string{"a", "b", ""}, want: "a\nb\n"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stringtest.JoinLF(tc.input...))
		})
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  []string
	}{
		"empty":            {input: "", want: nil},
		"only newline":     {input: "\n", want: nil},
		"trailing newline": {input: "a\nb\n", want: []string{"a", "b"}},
		"no newline":       {input: "a\nb", want: []string{"a", "b"}},
		"blank line kept":  {input: "a\n\nb\n", want: []string{"a", "", "b"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stringtest.Lines(tc.input))
		})
	}
}

func TestStripANSI(t *testing.T) {
	t.Parallel()

	got := stringtest.StripANSI("\x1b[1;31mERROR\x1b[0m \x1b[37mmain:\x1b[0m boom")
	assert.Equal(t, "ERROR main: boom", got)
}
