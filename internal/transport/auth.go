package transport

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// TokenService issues and validates the JWT bearer tokens the delegate host
// accepts. The validated subject becomes the call principal the
// authorization-evaluation runtime sees.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service. An empty secret disables
// authentication on the host.
func NewTokenService(secret string) *TokenService {
	if secret == "" {
		return nil
	}
	return &TokenService{secret: []byte(secret)}
}

// IssueToken creates a signed token for the given principal.
func (s *TokenService) IssueToken(principal string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   principal,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "opforge",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies a bearer token and returns its principal.
func (s *TokenService) ValidateToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
