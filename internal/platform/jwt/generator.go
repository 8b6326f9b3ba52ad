package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EnvKeyJWTSecret は署名シークレットを保持する環境変数名です。
const EnvKeyJWTSecret = "JWT_SECRET"

// ErrMissingClaims is returned when a verified token lacks sub or jti.
var ErrMissingClaims = errors.New("token is missing sub or jti")

// Claims are the registered claims carried by an access token.
// Subject is the user ID and ID (jti) identifies the session.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewManager creates a new token manager with the provided secret and expiration duration.
func NewManager(secret string, expiration time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token for the user.
// Every call uses a fresh jti, so two tokens for the same user never collide.
func (m *Manager) GenerateToken(userID string) (string, string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiration)
	tokenID := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, tokenID, expiresAt, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Only HMAC signing methods are accepted.
func (m *Manager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrMissingClaims
	}
	return claims, nil
}
