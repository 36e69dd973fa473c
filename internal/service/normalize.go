package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// label-only tokens some sources append to or prefix on account names
var accountLabelTokens = []string{"勘定科目", "科目"}

// NormalizeAccountName canonicalizes an account name for equality checks.
// Width variants are folded before separators and label-only tokens are
// dropped. The raw name is kept for display.
func NormalizeAccountName(name string) string {
	s := width.Fold.String(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '・' {
			return -1
		}
		return r
	}, s)
	for _, token := range accountLabelTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	return s
}
