package normalize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature checks that header carries a valid HMAC-SHA256 of body
// keyed by secret, in GitHub's "sha256=<hex>" format. Any malformation is a
// plain false: the caller turns that into an authentication failure, never a
// server error. The comparison is constant-time.
func VerifySignature(body []byte, header, secret string) bool {
	if secret == "" || header == "" {
		return false
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// Sign computes the signature header value for body. Used by tests and by
// clients of the custom-data path.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
