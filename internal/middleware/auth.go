package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const identityKey contextKey = "identity"

// Identity - пользователь, от имени которого выполняется запрос
type Identity struct {
	UserID string
	Role   user.Role
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errBadClaims = errors.New("в токене нет sub или role")

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// IssueToken подписывает HS256-токен с claims sub и role
func IssueToken(secret []byte, userID string, role user.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return token, nil
}

// ParseToken проверяет подпись и срок действия, возвращает личность
func ParseToken(secret []byte, raw string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}

	role := user.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return Identity{}, errBadClaims
	}
	return Identity{UserID: claims.Subject, Role: role}, nil
}

// Auth требует заголовок Authorization: Bearer <jwt>
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "нужен заголовок Authorization: Bearer")
				return
			}

			id, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Warn("HTTP: Неверный токен",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "неверный токен")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequirePermission пропускает запрос, только если роль имеет право p
func RequirePermission(p user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "запрос без авторизации")
				return
			}
			if !id.Role.Can(p) {
				logger.Warn("HTTP: Недостаточно прав",
					zap.String("user_id", id.UserID),
					zap.String("role", string(id.Role)),
					zap.String("permission", string(p)))
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "недостаточно прав: "+string(p))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
