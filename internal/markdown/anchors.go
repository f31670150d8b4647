package markdown

import (
	"fmt"
	"strings"
	"unicode"
)

// Slug converts heading text into its anchor form: lowercased, spaces
// replaced by hyphens, everything except letters, digits, hyphens and
// underscores dropped. This matches what repository viewers generate for
// heading links, so `[x](lesson.md#group-by-extensions)` resolves the same
// way in both places.
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// anchorSet generates document-unique anchors. Repeated headings get a
// numeric suffix, like repository viewers do.
type anchorSet struct {
	seen map[string]int
}

func newAnchorSet() *anchorSet {
	return &anchorSet{seen: make(map[string]int)}
}

func (a *anchorSet) generate(text string) string {
	anchor := Slug(text)
	if anchor == "" {
		anchor = "section"
	}
	n, taken := a.seen[anchor]
	a.seen[anchor] = n + 1
	if taken {
		return fmt.Sprintf("%s-%d", anchor, n)
	}
	return anchor
}
