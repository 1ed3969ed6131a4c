package classify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeStripsMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello World", "hello world"},
		{"tags", "<p>Hello <b>World</b></p>", "hello world"},
		{"script block", `<div>Hi<script>var x = "</div>";</script> there</div>`, "hi there"},
		{"style block", "<style>.a{color:red}</style>Offer inside", "offer inside"},
		{"entities", "Tom &amp; Jerry", "tom & jerry"},
		{"zero width", "he\u200bllo\ufeff world", "hello world"},
		{"whitespace runs", "a\n\n  b\t\tc", "a b c"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeText(tc.in); got != tc.want {
				t.Fatalf("NormalizeText(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Interview  Invitation\nNext Steps",
		"we received your application",
		"50% off sale, unsubscribe here",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestNormalizeTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 3000)
	got := NormalizeText(long)

	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected truncation marker, got tail %q", got[len(got)-8:])
	}
	if n := utf8.RuneCountInString(got); n != maxNormalizedChars+1 {
		t.Fatalf("expected %d runes, got %d", maxNormalizedChars+1, n)
	}
}

func TestNormalizeTotalOverAbsentInputs(t *testing.T) {
	t.Parallel()

	if got := Normalize("", "", ""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	if got := Normalize("Subject only", "", ""); got != "subject only" {
		t.Fatalf("unexpected result %q", got)
	}
}
