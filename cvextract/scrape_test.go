package cvextract

import (
	"context"
	"strings"
	"testing"
)

func TestScrape_TjLiterals(t *testing.T) {
	// WHAT: Parenthesised strings before Tj are recovered.
	// WHY: Single-string draws are the most common text operator.
	doc := []byte("garbage (Jane Doe) Tj more garbage (Software Engineer) Tj")
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !strings.Contains(got, "Jane Doe") || !strings.Contains(got, "Software Engineer") {
		t.Errorf("scrape = %q, missing Tj literals", got)
	}
}

func TestScrape_TJArrays(t *testing.T) {
	// WHAT: Bracket arrays before TJ concatenate their string items.
	// WHY: Kerned text splits words across array elements.
	doc := []byte(`noise [(Exp) -20 (erience)] TJ tail`)
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !strings.Contains(got, "Experience") {
		t.Errorf("scrape = %q, want kerned word reassembled", got)
	}
}

func TestScrape_HexStrings(t *testing.T) {
	// WHAT: Angle-bracket hex literals decode byte by byte.
	// WHY: Some generators emit every string hex-encoded.
	// 48656C6C6F = "Hello"
	doc := []byte("BT <48656C6C6F> Tj ET")
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("scrape = %q, want decoded hex string", got)
	}
}

func TestScrape_TextObjects(t *testing.T) {
	// WHAT: Strings inside BT…ET blocks are recovered even without Tj.
	doc := []byte("xx BT /F1 12 Tf (inside text object) ET yy")
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !strings.Contains(got, "inside text object") {
		t.Errorf("scrape = %q, want BT/ET content", got)
	}
}

func TestScrape_Dedup(t *testing.T) {
	// WHAT: Identical fragments appear once in the output.
	// WHY: Overlapping patterns (Tj + BT/ET) match the same text; the
	// fragment set must deduplicate before joining.
	doc := []byte("(repeated) Tj (repeated) Tj (repeated) Tj")
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if n := strings.Count(got, "repeated"); n != 1 {
		t.Errorf("fragment appears %d times, want 1: %q", n, got)
	}
}

func TestScrape_EscapedParens(t *testing.T) {
	// WHAT: Escaped parentheses inside literals do not break matching.
	doc := []byte(`(phone \(555\) 010) Tj`)
	got, err := scrapeOperators(context.Background(), doc)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !strings.Contains(got, "phone (555) 010") {
		t.Errorf("scrape = %q, want unescaped parens", got)
	}
}

func TestScrape_NothingFound(t *testing.T) {
	// WHAT: Bytes without any text pattern fail the strategy.
	// WHY: An empty candidate must register as a failure, not a winner.
	if _, err := scrapeOperators(context.Background(), []byte("binary \x00\x01\x02 soup")); err == nil {
		t.Error("expected error for patternless input")
	}
	if _, err := scrapeOperators(context.Background(), nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDecodeHexString_OddLength(t *testing.T) {
	// WHAT: Odd hex digit counts pad with zero per the PDF convention.
	// 48656C6C6F7 -> "Hellop" (0x70)
	got := decodeHexString([]byte("48656C6C6F7"))
	if got != "Hellop" {
		t.Errorf("decodeHexString = %q, want %q", got, "Hellop")
	}
}

func TestDecodeLiteralString_Escapes(t *testing.T) {
	// WHAT: Octal and character escapes resolve.
	got := decodeLiteralString([]byte(`a\040b\(c\)\\d`))
	if got != `a b(c)\d` {
		t.Errorf("decodeLiteralString = %q, want %q", got, `a b(c)\d`)
	}
}
