package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/khoahotran/jutjub/internal/domain/session"
)

// TokenClaims are the claims the API puts in its login token. The client
// never holds the signing key, so tokens are decoded, not verified.
type TokenClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenDecoder struct {
	parser *jwt.Parser
}

func NewTokenDecoder() *TokenDecoder {
	return &TokenDecoder{parser: jwt.NewParser()}
}

func (d *TokenDecoder) Decode(tokenString string) (*TokenClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, fmt.Errorf("empty token")
	}
	claims := &TokenClaims{}
	if _, _, err := d.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// NewSession builds a session from a login token. Opaque tokens that are not
// JWTs still produce a session without expiry.
func (d *TokenDecoder) NewSession(tokenString, fallbackUsername string) *session.Session {
	s := &session.Session{Token: tokenString, Username: fallbackUsername}
	claims, err := d.Decode(tokenString)
	if err != nil {
		return s
	}
	s.Subject = claims.Subject
	switch {
	case claims.Username != "":
		s.Username = claims.Username
	case claims.Subject != "" && s.Username == "":
		s.Username = claims.Subject
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

// Expired reports whether the token's exp claim is before now.
func (d *TokenDecoder) Expired(tokenString string, now time.Time) bool {
	claims, err := d.Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
