// Package crypto содержит криптографические примитивы сервера аренды:
//   - выпуск и проверку JWT access-токенов (HS256);
//   - хэширование паролей (argon2id, bcrypt);
//   - генерацию и хэширование одноразовых кодов сброса пароля.
package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки проверки токена.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// JWTConfig - параметры выпуска и проверки access-токена.
//
// Пустые Issuer и Audience при проверке не сверяются.
type JWTConfig struct {
	Issuer     string
	Audience   string
	SigningKey string
	AccessTTL  time.Duration
}

func (cfg JWTConfig) key(*jwt.Token) (any, error) {
	return []byte(cfg.SigningKey), nil
}

// NewAccessToken подписывает токен с subject = userID и сроком жизни AccessTTL.
func NewAccessToken(userID string, cfg JWTConfig) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
}

// ParseAccessToken проверяет подпись, срок, issuer и audience и возвращает subject.
//
// Просроченный токен даёт ErrTokenExpired, любой другой дефект - ErrTokenInvalid.
func ParseAccessToken(token string, cfg JWTConfig) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, cfg.key, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
