package services

import (
	"errors"
	"time"

	"coffee-quality-api/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService issues signed tokens that identify one browser session.
// The token carries no orchestrator state.
type SessionService struct {
	secret  []byte
	expiryH int
	now     func() time.Time
}

func NewSessionService(cfg config.SessionConfig, now func() time.Time) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		secret:  []byte(cfg.Secret),
		expiryH: cfg.ExpiryHours,
		now:     now,
	}
}

func (s *SessionService) Expiry() time.Duration {
	return time.Duration(s.expiryH) * time.Hour
}

// Issue returns a new session ID and its signed token.
func (s *SessionService) Issue() (string, string, error) {
	id := uuid.NewString()
	issued := s.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.Expiry())),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// Validate returns the session ID carried by tokenStr.
func (s *SessionService) Validate(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.ID, nil
}
