package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims ties a token to one review session. There is no user identity:
// whoever holds the token owns the session.
type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenConfig holds session-token configuration.
type TokenConfig struct {
	SecretKey     string
	TokenDuration time.Duration
}

// DefaultTokenConfig returns default configuration.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		SecretKey:     "change-me-in-production",
		TokenDuration: 24 * time.Hour,
	}
}

// TokenService issues and validates session-resume tokens. The token lets a
// refreshed or reconnected client reattach to its session without the
// server trusting a bare id from the URL alone.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a new TokenService.
func NewTokenService(config TokenConfig) *TokenService {
	if config.SecretKey == "" {
		config.SecretKey = DefaultTokenConfig().SecretKey
	}
	if config.TokenDuration == 0 {
		config.TokenDuration = DefaultTokenConfig().TokenDuration
	}
	return &TokenService{config: config}
}

// Issue creates a signed token for a session.
func (s *TokenService) Issue(sessionID uuid.UUID) (string, error) {
	claims := &Claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// Validate checks a token and returns the session id it names.
func (s *TokenService) Validate(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
