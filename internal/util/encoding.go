package util

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldCase canonicalizes s for case-insensitive comparison. Input is
// normalized to NFKC first so visually identical addresses compare equal.
func FoldCase(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}
