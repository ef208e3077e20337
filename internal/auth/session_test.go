package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "campusdesk/internal/errors"
)

func TestSessionVerifier_HS256RoundTrip(t *testing.T) {
	v, err := NewSessionVerifier("test-secret", "", "")
	require.NoError(t, err)

	token, err := v.Issue("user_123", time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
}

func TestSessionVerifier_Rejects(t *testing.T) {
	v, err := NewSessionVerifier("test-secret", "", "https://clerk.example")
	require.NoError(t, err)
	other, err := NewSessionVerifier("other-secret", "", "https://clerk.example")
	require.NoError(t, err)

	expired, err := v.Issue("user_1", -time.Minute)
	require.NoError(t, err)
	foreign, err := other.Issue("user_1", time.Minute)
	require.NoError(t, err)
	noIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://clerk.example",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"wrong issuer", noIssuer},
		{"missing subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		})
	}
}

func TestSessionVerifier_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewSessionVerifier("ignored", string(pemKey), "")
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &SessionClaims{
		SessionID: "sess_1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_rsa",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(key)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", claims.Subject)
	assert.Equal(t, "sess_1", claims.SessionID)

	// An HS256 token signed with the PEM bytes must not pass the RS256 verifier.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_rsa",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(pemKey)
	require.NoError(t, err)
	_, err = v.Verify(forged)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = v.Issue("user_rsa", time.Minute)
	assert.Error(t, err)
}

func TestNewSessionVerifier_RequiresKey(t *testing.T) {
	_, err := NewSessionVerifier("", "", "")
	assert.Error(t, err)

	_, err = NewSessionVerifier("", "-----BEGIN PUBLIC KEY-----\nnope\n-----END PUBLIC KEY-----", "")
	assert.Error(t, err)
}
