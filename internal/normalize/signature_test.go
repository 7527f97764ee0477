package normalize

import (
	"strings"
	"testing"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	bodies := []string{
		`{"action": "opened"}`,
		"",
		"plain text, not json",
		strings.Repeat("x", 1<<16),
	}
	for _, body := range bodies {
		sig := Sign([]byte(body), "s3cret")
		if !VerifySignature([]byte(body), sig, "s3cret") {
			t.Errorf("own signature rejected for body of %d bytes", len(body))
		}
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	body := []byte(`{"action": "opened"}`)
	good := Sign(body, "s3cret")

	cases := []struct {
		name   string
		body   []byte
		header string
		secret string
	}{
		{"missing header", body, "", "s3cret"},
		{"missing secret", body, good, ""},
		{"wrong secret", body, good, "other"},
		{"no prefix", body, strings.TrimPrefix(good, "sha256="), "s3cret"},
		{"sha1 prefix", body, "sha1=" + strings.TrimPrefix(good, "sha256="), "s3cret"},
		{"bad hex", body, "sha256=zzzz", "s3cret"},
		{"truncated", body, good[:len(good)-2], "s3cret"},
		{"mutated body", []byte(`{"action": "opened!"}`), good, "s3cret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifySignature(tc.body, tc.header, tc.secret) {
				t.Fatal("verification unexpectedly passed")
			}
		})
	}
}

func TestVerifySignatureBitFlip(t *testing.T) {
	body := []byte(`{"ref": "refs/heads/main"}`)
	sig := Sign(body, "s3cret")
	hexPart := strings.TrimPrefix(sig, "sha256=")
	for i := range hexPart {
		flipped := []byte(hexPart)
		if flipped[i] == '0' {
			flipped[i] = '1'
		} else {
			flipped[i] = '0'
		}
		if VerifySignature(body, "sha256="+string(flipped), "s3cret") {
			t.Fatalf("accepted signature with hex digit %d altered", i)
		}
	}
}
