package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid or tampered session cookie")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs session ids for the cookie so a client cannot guess or
// forge another session's id.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) (*CookieCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is not set")
	}
	return &CookieCodec{secret: []byte(secret)}, nil
}

func (c *CookieCodec) Encode(sessionID string) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	var claims sessionClaims

	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidCookie
	}

	return claims.SessionID, nil
}
