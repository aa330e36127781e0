package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue("room-1")
	require.NoError(t, err)
	assert.NoError(t, svc.Verify(token, "room-1"))
}

func TestTokenService_Rejects(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTokenService(testSecret, time.Hour, func() time.Time { return now })

	token, err := svc.Issue("room-1")
	require.NoError(t, err)

	other, err := newTokenService("another-secret-value", time.Hour, svc.now).Issue("room-1")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "room-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		room  string
		svc   *tokenService
	}{
		{name: "empty", token: "", room: "room-1", svc: svc},
		{name: "garbage", token: "not-a-jwt", room: "room-1", svc: svc},
		{name: "other room", token: token, room: "room-2", svc: svc},
		{name: "other secret", token: other, room: "room-1", svc: svc},
		{name: "alg none", token: unsigned, room: "room-1", svc: svc},
		{
			name:  "expired",
			token: token,
			room:  "room-1",
			svc:   newTokenService(testSecret, time.Hour, func() time.Time { return now.Add(2 * time.Hour) }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.svc.Verify(tt.token, tt.room), ErrInvalidToken)
		})
	}
}
