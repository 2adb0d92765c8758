package auth

import (
	"encoding/base64"
	"testing"
)

func TestHashPasswordKnownVector(t *testing.T) {
	// HMAC-SHA256(key="secret", msg="salt-password")
	want := "36cd1261e897976401d4271e4b0d7f973b5cddcaa9deac577f83eac25cfb8f76"
	if got := HashPassword("secret", "salt", "password"); got != want {
		t.Fatalf("HashPassword() = %s, want %s", got, want)
	}
}

func TestHashPasswordInputsMatter(t *testing.T) {
	base := HashPassword("secret", "salt", "password")

	tests := []struct {
		name                   string
		secret, salt, password string
	}{
		{"different secret", "other", "salt", "password"},
		{"different salt", "secret", "pepper", "password"},
		{"different password", "secret", "salt", "passw0rd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if HashPassword(tt.secret, tt.salt, tt.password) == base {
				t.Errorf("hash did not change")
			}
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	stored := HashPassword("s3cret", salt, "hunter22")

	if !VerifyPassword("s3cret", salt, "hunter22", stored) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("s3cret", salt, "hunter23", stored) {
		t.Error("wrong password accepted")
	}
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSalt()

	if a == b {
		t.Error("two salts are equal")
	}

	raw, err := base64.StdEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("salt is not base64: %v", err)
	}
	if len(raw) != saltBytes {
		t.Errorf("salt has %d bytes, want %d", len(raw), saltBytes)
	}
}
