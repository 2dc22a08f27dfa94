package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/domain"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Роли, которые выдаёт сервис аутентификации
const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

const (
	msgUnauthorized = "требуется аутентификация"
	msgInvalidToken = "недействительный токен сессии"
	msgForbidden    = "доступ запрещен"
)

var errInvalidSubject = errors.New("token subject is not a valid citizen ID")

// Claims содержимое токена сессии: sub - идентификатор гражданина (для пациента)
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator проверяет HS256 токены сессии из заголовка Authorization или cookie
type Authenticator struct {
	secret     []byte
	issuer     string
	cookieName string
	logger     Logger
}

func NewAuthenticator(secret, issuer, cookieName string, logger Logger) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		issuer:     issuer,
		cookieName: cookieName,
		logger:     logger,
	}
}

// OptionalAuth кладёт личность в контекст, если токен передан
// Отсутствие токена - анонимный запрос, испорченный токен - 401
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := a.tokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.parse(raw)
		if err != nil {
			a.logger.Warn("Auth: rejected token on %s %s: %v", r.Method, r.URL.Path, err)
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Subject, claims.Role)))
	})
}

// Auth требует валидный токен
func (a *Authenticator) Auth(next http.Handler) http.Handler {
	return a.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin пропускает только администраторов; ставится после Auth
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}
		if !IsAdmin(r.Context()) {
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

func (a *Authenticator) parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims.Role != RoleAdmin && !domain.IsValidCitizenID(claims.Subject) {
		return nil, errInvalidSubject
	}
	if claims.Role == "" {
		claims.Role = RolePatient
	}

	return claims, nil
}

// WithIdentity кладёт идентификатор и роль в контекст
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// GetUserID идентификатор аутентифицированного пользователя (для пациента - citizen ID)
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// IsAdmin true, если запрос выполняет администратор
func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(roleKey).(string)
	return role == RoleAdmin
}
