package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "campusdesk/internal/errors"
)

// SessionClaims are the claims the identity provider puts in a session token.
// The subject is the external identity id.
type SessionClaims struct {
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// SessionVerifier validates identity-provider session tokens. RS256 is used when a
// public key is configured, HS256 with a shared secret otherwise.
type SessionVerifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
}

// NewSessionVerifier builds a verifier from configuration. publicKeyPEM wins over secret.
func NewSessionVerifier(secret, publicKeyPEM, issuer string) (*SessionVerifier, error) {
	v := &SessionVerifier{issuer: issuer}
	if strings.TrimSpace(publicKeyPEM) != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse session public key: %w", err)
		}
		v.publicKey = key
		return v, nil
	}
	if secret == "" {
		return nil, errors.New("either SESSION_JWT_PUBLIC_KEY or SESSION_JWT_SECRET must be set")
	}
	v.secret = []byte(secret)
	return v, nil
}

// Verify validates a session token and returns its claims. Every failure wraps
// ErrUnauthenticated.
func (v *SessionVerifier) Verify(tokenString string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, v.keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session", apperrors.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: session has no subject", apperrors.ErrUnauthenticated)
	}
	return claims, nil
}

// Issue signs a session for subject with the shared secret. It exists for local
// development and tests; production sessions come from the identity provider.
func (v *SessionVerifier) Issue(subject string, ttl time.Duration) (string, error) {
	if v.secret == nil {
		return "", errors.New("sessions can only be issued with a shared secret")
	}
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *SessionVerifier) methods() []string {
	if v.publicKey != nil {
		return []string{jwt.SigningMethodRS256.Alg()}
	}
	return []string{jwt.SigningMethodHS256.Alg()}
}

func (v *SessionVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if v.publicKey != nil {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.publicKey, nil
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return v.secret, nil
}
