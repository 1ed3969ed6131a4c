package gmailbox

import (
	"encoding/base64"
	"testing"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func textPart(mime, body string) *gmailv1.MessagePart {
	return &gmailv1.MessagePart{
		MimeType: mime,
		Body:     &gmailv1.MessagePartBody{Data: b64url(body)},
	}
}

func TestExtractPlainTextPrefersPlainBranch(t *testing.T) {
	t.Parallel()

	msg := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			textPart("text/html", "<p>hello</p>"),
			textPart("text/plain", "hello"),
		},
	}

	if got := extractPlainText(msg); got != "hello" {
		t.Fatalf("extractPlainText = %q; want %q", got, "hello")
	}
}

func TestExtractPlainTextNested(t *testing.T) {
	t.Parallel()

	msg := &gmailv1.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailv1.MessagePart{
			{MimeType: "application/pdf", Body: &gmailv1.MessagePartBody{Data: b64url("binary")}},
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailv1.MessagePart{
					textPart("text/plain", "inner body"),
				},
			},
		},
	}

	if got := extractPlainText(msg); got != "inner body" {
		t.Fatalf("extractPlainText = %q; want %q", got, "inner body")
	}
}

func TestExtractPlainTextMissing(t *testing.T) {
	t.Parallel()

	msg := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts:    []*gmailv1.MessagePart{textPart("text/html", "<p>only html</p>")},
	}

	if got := extractPlainText(msg); got != "" {
		t.Fatalf("extractPlainText = %q; want empty", got)
	}
	if got := extractHTML(msg); got != "<p>only html</p>" {
		t.Fatalf("extractHTML = %q", got)
	}
}

func TestDecodeBase64URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unpadded", base64.RawURLEncoding.EncodeToString([]byte("otp 123456")), "otp 123456"},
		{"padded", base64.URLEncoding.EncodeToString([]byte("otp 123456")), "otp 123456"},
		{"garbage", "!!not base64!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := decodeBase64URL(tc.in); got != tc.want {
				t.Fatalf("decodeBase64URL(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}
