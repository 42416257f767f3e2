// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// JWTVerifier проверяет access-токены на защищённых маршрутах.
type JWTVerifier struct {
	cfg crypto.JWTConfig
}

// NewJWTVerifier создаёт JWTVerifier. Пустые issuer и audience не проверяются.
func NewJWTVerifier(signingKey, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{cfg: crypto.JWTConfig{
		SigningKey: signingKey,
		Issuer:     issuer,
		Audience:   audience,
	}}
}

// UserIDFromContext возвращает id пользователя, положенный AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// WithUserID кладёт userID в контекст (используется и в тестах хендлеров).
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// unauthorized отвечает 401 в общем формате API {success:false, message}.
func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

// AuthMiddleware пропускает запрос дальше, только если в Authorization
// действующий токен, subject которого - UUID пользователя.
//
// Ответы 401:
//   - "Not authorized" - токена нет;
//   - "Token expired" - срок истёк;
//   - "Not authorized, invalid token" - всё остальное.
func (v *JWTVerifier) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w, "Not authorized")
				return
			}

			sub, err := crypto.ParseAccessToken(token, v.cfg)
			if errors.Is(err, crypto.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			if err != nil {
				unauthorized(w, "Not authorized, invalid token")
				return
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				unauthorized(w, "Not authorized, invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// TokenFromHeader достаёт токен из значения Authorization.
//
// Принимается "Bearer <token>" и голый "<token>": веб-клиент шлёт токен без схемы.
// Любая другая схема (Basic и т.п.) даёт пустую строку.
func TokenFromHeader(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}

	scheme, rest, found := strings.Cut(h, " ")
	if !found {
		return h
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}
