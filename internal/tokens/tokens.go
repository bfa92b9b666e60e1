package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for tokens that fail parsing or verification.
var ErrInvalidToken = errors.New("invalid session token")

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Issue signs a token for session that expires with it.
func (s *Signer) Issue(session *models.Session) (string, error) {
	claims := &models.JwtCustomClaims{
		AccountID: session.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.AccountID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies token and returns its claims.
func (s *Signer) Parse(token string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewSession builds an unsaved session for accountID.
func NewSession(id, accountID string, now time.Time, ttl time.Duration) *models.Session {
	return &models.Session{
		ID:        id,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
