package http

import (
	"strings"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/google/go-github/v75/github"
)

const sha256Prefix = "sha256="

// Authenticator checks that a rebuild request was signed with the shared rebuild key.
type Authenticator struct {
	key []byte
}

func NewAuthenticator(key string) *Authenticator {
	return &Authenticator{key: []byte(key)}
}

// Verify accepts an X-Hub-Signature-256 value, either "sha256=<hex>" or bare
// hex, and compares it in constant time with the HMAC-SHA256 of body.
func (a *Authenticator) Verify(signature string, body []byte) error {
	if len(a.key) == 0 {
		return &domain.SignatureMismatchError{Reason: "no rebuild key configured"}
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return &domain.SignatureMismatchError{Reason: "missing " + github.SHA256SignatureHeader + " header"}
	}
	if !strings.Contains(signature, "=") {
		signature = sha256Prefix + signature
	}
	if !strings.HasPrefix(signature, sha256Prefix) {
		return &domain.SignatureMismatchError{Reason: "unsupported signature algorithm"}
	}

	if err := github.ValidateSignature(signature, body, a.key); err != nil {
		return &domain.SignatureMismatchError{Reason: err.Error()}
	}
	return nil
}
