// Package auth resolves a caller's identity from a signed bearer credential.
// Downstream services receive the resolved (userID, isAdmin) pair explicitly
// and never touch raw credentials.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
)

// Identity is the verified caller identity the order engine trusts.
type Identity struct {
	UserID  string
	IsAdmin bool
}

var ErrInvalidToken = errors.New("invalid or expired token")

type accessClaims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type emailClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access and email-verification tokens.
type TokenIssuer struct {
	cfg config.AuthConfig
}

func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

// IssueAccessToken signs a credential carrying the user id and admin flag.
func (t *TokenIssuer) IssueAccessToken(userID string, isAdmin bool) (string, error) {
	claims := accessClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.JWTSecret))
}

// VerifyAccessToken resolves the identity from a signed credential.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (Identity, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(t.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}

// IssueEmailToken signs a short-lived token for email verification links.
// It is signed with a separate secret so an email link can never act as an
// access credential.
func (t *TokenIssuer) IssueEmailToken(userID string) (string, error) {
	claims := emailClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.cfg.EmailTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.EmailSecret))
}

// VerifyEmailToken returns the user id carried by a verification token.
func (t *TokenIssuer) VerifyEmailToken(tokenString string) (string, error) {
	var claims emailClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(t.cfg.EmailSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
