package cvextract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// pdfLiteralRe matches a PDF string operand: a parenthesised literal
// (escape-aware) or an angle-bracket hex string.
var pdfLiteralRe = regexp.MustCompile(`\(((?:[^\\()]|\\.)*)\)|<([0-9A-Fa-f\s]+)>`)

var (
	// (text) Tj — single-string draw.
	tjOperandRe = regexp.MustCompile(`\(((?:[^\\()]|\\.)*)\)\s*Tj`)
	// [(te) -20 (xt)] TJ — array draw with kerning numbers between items.
	tjArrayRe = regexp.MustCompile(`\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)
	// BT … ET — everything inside a text object.
	textObjectRe = regexp.MustCompile(`(?s)BT(.*?)ET`)
)

// scrapeOperators is the last-resort strategy: it treats the document bytes
// as a string and pulls literal text straight out of the drawing operators,
// ignoring the PDF object structure entirely. It works on files whose xref
// table is broken beyond what the structural decoders tolerate, at the cost
// of picking up fragments in arbitrary order — hence the set-based dedup
// and the lowest acceptance threshold of all strategies.
func scrapeOperators(ctx context.Context, doc []byte) (string, error) {
	if len(doc) == 0 {
		return "", fmt.Errorf("empty document")
	}
	_ = ctx

	body := string(doc)
	seen := make(map[string]struct{})
	var fragments []string

	keep := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		fragments = append(fragments, s)
	}

	for _, m := range tjOperandRe.FindAllStringSubmatch(body, -1) {
		keep(decodeLiteralString([]byte(m[1])))
	}

	for _, m := range tjArrayRe.FindAllStringSubmatch(body, -1) {
		keep(scrapeOperands(m[1]))
	}

	for _, m := range textObjectRe.FindAllStringSubmatch(body, -1) {
		keep(scrapeOperands(m[1]))
	}

	if len(fragments) == 0 {
		return "", fmt.Errorf("no text patterns in document")
	}
	return strings.Join(fragments, " "), nil
}

// scrapeOperands concatenates every string operand inside a region,
// decoding literals and hex strings alike.
func scrapeOperands(region string) string {
	var sb strings.Builder
	for _, m := range pdfLiteralRe.FindAllStringSubmatch(region, -1) {
		if m[0][0] == '(' {
			sb.WriteString(decodeLiteralString([]byte(m[1])))
		} else {
			sb.WriteString(decodeHexString([]byte(m[2])))
		}
	}
	return sb.String()
}
