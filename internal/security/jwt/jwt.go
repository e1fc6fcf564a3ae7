// Package jwt signs and verifies HS256 session tokens carrying the account
// identity used by the auth middleware.
package jwt

import (
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError represents JWT token related errors.
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	// DefaultSessionExpire is the session lifetime when config leaves it unset.
	DefaultSessionExpire = time.Hour * 24

	ErrNeedSigningKey = TokenError("cannot sign token without signing key")
	ErrInvalidToken   = TokenError("invalid token")
	ErrTokenParsing   = TokenError("token parsing error")
)

// SessionPayload is the identity carried by a session token.
type SessionPayload struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// TokenManager handles JWT token operations.
type TokenManager struct {
	key    string
	expire time.Duration
}

// NewTokenManager creates a new TokenManager instance.
func NewTokenManager(key string, expire time.Duration) *TokenManager {
	if expire <= 0 {
		expire = DefaultSessionExpire
	}
	return &TokenManager{key: key, expire: expire}
}

// GenerateSessionToken signs a session token for the given identity.
func (tm *TokenManager) GenerateSessionToken(jti string, payload SessionPayload) (string, error) {
	if tm.key == "" {
		return "", ErrNeedSigningKey
	}

	claims := jwtstd.MapClaims{
		"jti": jti,
		"sub": payload.AccountID,
		"payload": map[string]any{
			"account_id": payload.AccountID,
			"email":      payload.Email,
			"role":       payload.Role,
		},
		"exp": time.Now().Add(tm.expire).Unix(),
		"iat": time.Now().Unix(),
	}

	t := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	return t.SignedString([]byte(tm.key))
}

// ParseSessionToken verifies a token and extracts the session identity.
func (tm *TokenManager) ParseSessionToken(tokenString string) (SessionPayload, error) {
	if tm.key == "" {
		return SessionPayload{}, ErrNeedSigningKey
	}

	token, err := jwtstd.Parse(tokenString, func(t *jwtstd.Token) (any, error) {
		if _, ok := t.Method.(*jwtstd.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(tm.key), nil
	})
	if err != nil {
		return SessionPayload{}, ErrTokenParsing
	}

	claims, ok := token.Claims.(jwtstd.MapClaims)
	if !ok || !token.Valid {
		return SessionPayload{}, ErrInvalidToken
	}

	payload, ok := claims["payload"].(map[string]any)
	if !ok {
		return SessionPayload{}, ErrInvalidToken
	}

	return SessionPayload{
		AccountID: getString(payload, "account_id"),
		Email:     getString(payload, "email"),
		Role:      getString(payload, "role"),
	}, nil
}

// getString safely extracts a string value from the payload.
func getString(payload map[string]any, key string) string {
	if val, ok := payload[key].(string); ok {
		return val
	}
	return ""
}
