package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "liftlog"
	tokenAudience = "liftlog-web"
)

// ErrInvalidToken is returned for missing, expired, or tampered ID tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(id Identity) (*Credential, error) {
	if s.cfg.Secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		Name:  id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}
	return &Credential{Token: signed, Identity: id, ExpiresAt: expires}, nil
}

// Verify checks an ID token and returns the identity it carries.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: c.Subject, Email: c.Email, DisplayName: c.Name}, nil
}
