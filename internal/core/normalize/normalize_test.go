package normalize

import (
	"slices"
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "open source",
			out:  "open source",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "case fold",
			in:   "OpenCollective",
			out:  "opencollective",
		},
		{
			name: "remove zero-widths",
			in:   "b\u200Be\u200Des", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "bees",
		},
		{
			name: "remove combining marks",
			in:   "cafe\u0301", // "café" using combining acute accent
			out:  "cafe",
		},
		{
			name: "width fold fullwidth",
			in:   "\uFF22\uFF25\uFF25\uFF33 club", // fullwidth letters
			out:  "bees club",
		},
		{
			name: "nfkd ligature",
			in:   "o\uFB03ce", // ffi ligature
			out:  "office",
		},
		{
			name: "controls split words",
			in:   "a\x00b\x07c",
			out:  "a b c",
		},
		{
			name: "collapse whitespace",
			in:   " \t a\t\tb\nc   d \r\n",
			out:  "a b c d",
		},
		{
			name: "idempotent",
			in:   n.Normalize("\uFF26\u0301AN\t\tB\u200Dor  "),
			out:  "fan bor",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// normalize again should be identical
			if got2 := n.Normalize(got); got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

func TestNormalize_MaxRunes(t *testing.T) {
	n := New(WithMaxRunes(6))
	if got := n.Normalize("Bees \u00DCnited"); got != "bees u" {
		t.Fatalf("got %q", got)
	}
	if got := n.Normalize("abc def"); got != "abc de" {
		t.Fatalf("got %q", got)
	}
	if got := New(WithMaxRunes(-1)).Normalize("ABC"); got != "abc" {
		t.Fatalf("negative limit: %q", got)
	}
}

func TestTerms(t *testing.T) {
	got := New().Terms("Bees  bees FUND\tfund club")
	if !slices.Equal(got, []string{"bees", "fund", "club"}) {
		t.Fatalf("got %v", got)
	}
	if len(New().Terms("   ")) != 0 {
		t.Fatalf("blank input has no terms")
	}
}
