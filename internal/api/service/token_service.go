package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// badly signed or issued for another room.
var ErrInvalidToken = errors.New("invalid room token")

// TokenService issues and checks the tokens that grant access to a room.
type TokenService interface {
	Issue(roomID string) (string, error)
	Verify(tokenString, roomID string) error
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing HS256 tokens with secret.
func NewTokenService(secret string, ttl time.Duration) TokenService {
	return newTokenService(secret, ttl, time.Now)
}

func newTokenService(secret string, ttl time.Duration, now func() time.Time) *tokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue creates a token whose subject is roomID.
func (s *tokenService) Issue(roomID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   roomID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return tokenString, nil
}

// Verify checks that tokenString is a valid, unexpired token for roomID.
func (s *tokenService) Verify(tokenString, roomID string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}

	_, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(roomID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
