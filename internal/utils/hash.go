package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// GenerateRandomToken returns size random bytes encoded as unpadded base64url.
func GenerateRandomToken(size int) (string, error) {
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateHexToken returns size random bytes hex encoded (2*size characters).
func GenerateHexToken(size int) (string, error) {
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
