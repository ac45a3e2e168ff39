package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/keksoko/storefront/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims identify an anonymous buyer session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Mint issues a signed session token for the provided session ID.
func Mint(cfg config.SessionConfig, now time.Time, sessionID string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("session issuer is required")
	}
	if cfg.TTL() <= 0 {
		return "", fmt.Errorf("session ttl must be positive")
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse validates the token string and returns the session ID it carries.
func Parse(cfg config.SessionConfig, tokenString string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("session secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return "", fmt.Errorf("session token missing session id")
	}
	return claims.SessionID, nil
}
