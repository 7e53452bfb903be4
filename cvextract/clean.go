package cvextract

import (
	"regexp"
	"strings"
)

// pdfArtifactRe matches document-generator noise that leaks into recovered
// text: object boundary keywords, cross-reference markers, and header/footer
// signatures. Tokens are replaced with a space, never deleted, so removal
// cannot fuse two unrelated words together.
var pdfArtifactRe = regexp.MustCompile(
	`\d+\s+\d+\s+obj\b|\bendobj\b|\bendstream\b|\bstartxref\b|\bxref\b|\btrailer\b|%PDF-\d+\.\d+|%%EOF`)

// Clean normalises a raw text fragment into printable, whitespace-collapsed
// text. It is total (never fails, empty in -> empty out) and idempotent:
// Clean(Clean(x)) == Clean(x).
//
// Bytes outside the printable ASCII range become a single space rather than
// being dropped, so word boundaries survive even when the input is binary
// garbage or a non-UTF8 byte soup.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	// Byte-wise pass: the input may not be valid UTF-8.
	b := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 0x20 && c <= 0x7E:
			b[i] = c
		case c == '\n' || c == '\r' || c == '\t':
			b[i] = c
		default:
			b[i] = ' '
		}
	}

	// Removing one artifact can expose another (glued tokens like
	// "1 0 obj2 0 obj"), so replace until fixpoint.
	s := string(b)
	for {
		next := pdfArtifactRe.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}

	return collapseWhitespace(s)
}

// collapseWhitespace reduces every run of whitespace to a single space and
// trims the result.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pending := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			pending = sb.Len() > 0
			continue
		}
		if pending {
			sb.WriteByte(' ')
			pending = false
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
