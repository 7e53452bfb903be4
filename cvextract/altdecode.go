package cvextract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// decodeAlternate is the alternate-option structural decode: row-grouped
// extraction with text-item merging disabled. Each text item is emitted as
// its own whitespace-separated token, which recovers documents whose
// generators interleave items in ways the standard decode glues together
// or drops.
func decodeAlternate(ctx context.Context, doc []byte) (string, error) {
	if len(doc) == 0 {
		return "", fmt.Errorf("empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", fmt.Errorf("open reader: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			wrote := false
			for _, item := range row.Content {
				s := strings.TrimSpace(item.S)
				if s == "" {
					continue
				}
				if wrote {
					sb.WriteByte(' ')
				}
				sb.WriteString(s)
				wrote = true
			}
			if wrote {
				sb.WriteByte('\n')
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text rows in document")
	}
	return sb.String(), nil
}
