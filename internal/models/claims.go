package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken — access-токен не разбирается как JWT.
var ErrMalformedToken = errors.New("malformed access token")

// AccessClaims — клиентское представление claims access-токена.
// Токен НЕ верифицируется: подпись проверяет только сервер, клиенту
// claims нужны для отображения (whoami, инспекция срока действия).
type AccessClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// ParseAccessClaims разбирает access-токен без проверки подписи.
func ParseAccessClaims(token string) (*AccessClaims, error) {
	const op = "models.claims.ParseAccessClaims"

	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	return claims, nil
}

// Expiry возвращает срок действия из claims (нулевое время, если exp нет).
func (c *AccessClaims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}

	return c.RegisteredClaims.ExpiresAt.Time
}
