// Package stringtest holds helpers for comparing rendered log output in
// tests.
package stringtest

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected output with explicit line endings; pass a
// trailing "" to end with a newline.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"INFO  main: started",
//		"WARN  main: slow",
//		"",
//	) // -> "INFO  main: started\nWARN  main: slow\n"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}

// Lines splits s on LF, dropping the empty element after a final newline.
func Lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}
