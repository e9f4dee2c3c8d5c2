package utils

import (
	"errors"
	"time"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session cookie: the user's email as
// subject, the user type, and the session id as JWT ID.
type SessionClaims struct {
	UserType domain.UserType `json:"typ"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token for user.
func GenerateSessionToken(user domain.User, sessionID string, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserType: user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    issuer,
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken parses a session token, validates its signature and
// standard claims, and returns the session id and user it carries.
func ParseSessionToken(tokenString string, secretKey string) (string, domain.User, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return "", domain.User{}, err
	}
	if !token.Valid {
		return "", domain.User{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.ID == "" || claims.Subject == "" {
		return "", domain.User{}, errors.New("session token missing subject or id")
	}

	return claims.ID, domain.User{Type: claims.UserType, Email: claims.Subject}, nil
}
