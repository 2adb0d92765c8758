package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const saltBytes = 128

// NewSalt returns a fresh per-user salt. It is generated once at
// registration and stored alongside the password hash.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashPassword computes hex(HMAC-SHA256(secret, salt + "-" + password)).
func HashPassword(secret, salt, password string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt + "-" + password))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPassword recomputes the hash with the stored salt and compares.
func VerifyPassword(secret, salt, password, stored string) bool {
	return HashPassword(secret, salt, password) == stored
}
