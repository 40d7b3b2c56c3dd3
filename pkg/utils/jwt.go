package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/pkg/clock"
)

const issuer = "storefront-admin"

// TokenKind separates access tokens from refresh tokens so one cannot be
// presented in place of the other.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenWrongKind = errors.New("token has the wrong kind")
)

// JWTClaims is the payload of both token kinds. Roles, permissions and email
// are only set on access tokens. TenantID is the store the session works in
// and is uuid.Nil for a user without one.
type JWTClaims struct {
	Kind        TokenKind `json:"kind"`
	UserID      uuid.UUID `json:"user_id"`
	TenantID    uuid.UUID `json:"tenant_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	clock         clock.Clock
}

func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration, clk clock.Clock) *JWTManager {
	if clk == nil {
		clk = clock.Real()
	}
	return &JWTManager{
		secretKey:     []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		clock:         clk,
	}
}

func (m *JWTManager) GenerateAccessToken(userID, tenantID uuid.UUID, email string, roles, permissions []string) (string, error) {
	return m.sign(&JWTClaims{
		Kind:        AccessToken,
		UserID:      userID,
		TenantID:    tenantID,
		Email:       email,
		Roles:       roles,
		Permissions: permissions,
	}, m.accessExpiry)
}

// GenerateRefreshToken remembers the tenant so a refresh lands the user back
// in the same store.
func (m *JWTManager) GenerateRefreshToken(userID, tenantID uuid.UUID) (string, error) {
	return m.sign(&JWTClaims{
		Kind:     RefreshToken,
		UserID:   userID,
		TenantID: tenantID,
	}, m.refreshExpiry)
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	return m.parse(tokenString, AccessToken)
}

func (m *JWTManager) ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	return m.parse(tokenString, RefreshToken)
}

func (m *JWTManager) sign(claims *JWTClaims, ttl time.Duration) (string, error) {
	now := m.clock.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

func (m *JWTManager) parse(tokenString string, kind TokenKind) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.clock.Now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Kind != kind {
		return nil, ErrTokenWrongKind
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
