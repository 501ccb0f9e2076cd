package apitoken

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
)

const (
	secretPrefix  = "bdz_"
	secretBytes   = 24
	maskKeepChars = 8 // prefix + first chars stay visible for identification
)

// GenerateSecret returns a new opaque bearer secret of the form
// bdz_<48 hex chars>.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	return secretPrefix + hex.EncodeToString(buf), nil
}

// MaskSecret hides all but the identifying head of a secret.
func MaskSecret(secret string) string {
	keep := len(secretPrefix) + maskKeepChars
	if len(secret) <= keep {
		return secret
	}
	return secret[:keep] + "************"
}
