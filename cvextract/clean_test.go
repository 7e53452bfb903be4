package cvextract

import (
	"strings"
	"testing"
)

func TestClean_Idempotent(t *testing.T) {
	// WHAT: Clean(Clean(x)) == Clean(x) for varied inputs.
	// WHY: The engine may clean already-cleaned fragments; the result must
	// be stable or scores would drift between passes.
	inputs := []string{
		"",
		"plain text already clean",
		"  leading and   trailing   \n\n whitespace \t ",
		"control\x00chars\x01and\x1fbytes",
		"caf\xc3\xa9 r\xc3\xa9sum\xc3\xa9 with utf8 bytes",
		"1 0 obj stream data endstream endobj trailer startxref",
		"1 0 obj2 0 obj",
		"xrefxref trailer%PDF-1.4",
		string([]byte{0xff, 0xfe, 0x00, 0x41, 0x42}),
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestClean_CascadingArtifacts(t *testing.T) {
	// WHAT: Artifacts glued together are fully removed in one Clean call.
	// WHY: Removing "2 0 obj" from "1 0 obj2 0 obj" exposes "1 0 obj";
	// a single replacement pass would leave it behind and break idempotence.
	if got := Clean("1 0 obj2 0 obj"); got != "" {
		t.Errorf("Clean = %q, want empty", got)
	}
	if got := Clean("John endobjendstream Smith 3 0 obj4 0 obj"); got != "John endobjendstream Smith" {
		t.Errorf("Clean = %q, want glued artifacts gone and glued words kept", got)
	}
}

func TestClean_Empty(t *testing.T) {
	// WHAT: Empty in, empty out, no panic.
	// WHY: Totality is part of the contract.
	if got := Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q, want empty", got)
	}
}

func TestClean_ControlBytes(t *testing.T) {
	// WHAT: Control bytes become spaces, preserving word boundaries.
	// WHY: Dropping them outright would fuse adjacent words.
	got := Clean("hello\x00world")
	if got != "hello world" {
		t.Errorf("Clean = %q, want %q", got, "hello world")
	}
}

func TestClean_NonASCIIBecomesBoundary(t *testing.T) {
	// WHAT: Bytes outside printable ASCII separate words instead of joining them.
	// WHY: Per-byte replacement with a space keeps "Zoë Miller" as two tokens.
	got := Clean("Zo\xc3\xabMiller")
	if !strings.Contains(got, "Zo Miller") {
		t.Errorf("Clean = %q, expected word boundary between Zo and Miller", got)
	}
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	// WHAT: Runs of whitespace and blank lines collapse to single spaces.
	got := Clean("one  two\n\n\nthree\t\tfour")
	if got != "one two three four" {
		t.Errorf("Clean = %q, want %q", got, "one two three four")
	}
}

func TestClean_StripsPDFArtifacts(t *testing.T) {
	// WHAT: Object boundary keywords and xref markers are removed.
	// WHY: Scraped text often drags structural noise along; it must not
	// reach the scorer or the downstream field extractor.
	in := "4 0 obj John Smith endobj xref trailer %PDF-1.4 Senior Engineer %%EOF"
	got := Clean(in)
	for _, marker := range []string{"obj", "xref", "trailer", "%PDF", "%%EOF"} {
		if strings.Contains(got, marker) {
			t.Errorf("Clean left artifact %q in %q", marker, got)
		}
	}
	if !strings.Contains(got, "John Smith") || !strings.Contains(got, "Senior Engineer") {
		t.Errorf("Clean dropped real content: %q", got)
	}
}

func TestClean_KeepsProse(t *testing.T) {
	// WHAT: Ordinary résumé prose passes through unchanged.
	in := "Jane Doe - Software Engineer. 5 years experience, jane@acme.com"
	if got := Clean(in); got != in {
		t.Errorf("Clean altered clean prose: %q -> %q", in, got)
	}
}
