package cvextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// decodeStandard is the whole-document structural decode: pdfcpu parses the
// cross-reference table and decompresses each page's content stream, and the
// text-drawing operators are walked in document order.
func decodeStandard(ctx context.Context, doc []byte) (string, error) {
	pctx, err := readPDF(doc)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		page := decodeContentStream(data)
		if page == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(page)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text operators in %d pages", pctx.PageCount)
	}
	return sb.String(), nil
}

func readPDF(doc []byte) (*model.Context, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pctx, nil
}

// decodeContentStream walks the text-drawing operators of a decompressed
// page content stream. Positioning operators become whitespace so words on
// separate lines do not run together.
func decodeContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")),
			bytes.HasSuffix(line, []byte("TJ")):
			writeStringOperands(&sb, line, "")
		case bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte("\"")):
			// Move-and-show operators start a new line of text.
			writeStringOperands(&sb, line, "\n")
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return strings.TrimSpace(sb.String())
}

// writeStringOperands appends every literal and hex string found on an
// operator line, prefixing the first with sep.
func writeStringOperands(sb *strings.Builder, line []byte, sep string) {
	first := true
	for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
		var text string
		if m[0][0] == '(' {
			text = decodeLiteralString(m[1])
		} else {
			text = decodeHexString(m[2])
		}
		if text == "" {
			continue
		}
		if first {
			sb.WriteString(sep)
			first = false
		}
		sb.WriteString(text)
	}
}

// decodeLiteralString resolves PDF escape sequences inside a ( ) literal.
func decodeLiteralString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
			// Backspace and form feed carry no text.
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// decodeHexString converts an angle-bracket hex literal byte by byte.
// An odd trailing digit is padded with zero, as PDF readers do.
func decodeHexString(raw []byte) string {
	var digits []byte
	for _, c := range raw {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var sb strings.Builder
	for i := 0; i < len(digits); i += 2 {
		sb.WriteByte(hexVal(digits[i])<<4 | hexVal(digits[i+1]))
	}
	return sb.String()
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// hasImageStreams checks whether the document carries image XObjects,
// which is the strongest signal that a text-less PDF is scanned.
func hasImageStreams(pctx *model.Context) bool {
	if pctx.Optimize != nil {
		for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(pctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range pctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}
