package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HospitalBookingService/pkg/logger"
)

const (
	testSecret  = "test-secret"
	testIssuer  = "hospital-booking"
	testCookie  = "session"
	testCitizen = "1101700230708"
)

func newAuth() *Authenticator {
	return NewAuthenticator(testSecret, testIssuer, testCookie, logger.Nop())
}

// issueToken подписывает токен тем же ключом и издателем, что проверяет a
func issueToken(a *Authenticator, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// echoIdentity возвращает личность из контекста в заголовках
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		if ok {
			w.Header().Set("X-User", id)
		}
		if IsAdmin(r.Context()) {
			w.Header().Set("X-Admin", "true")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestOptionalAuth(t *testing.T) {
	auth := newAuth()
	token, err := issueToken(auth, testCitizen, RolePatient, time.Hour)
	require.NoError(t, err)

	expired, err := issueToken(auth, testCitizen, RolePatient, -time.Minute)
	require.NoError(t, err)

	foreign, err := issueToken(NewAuthenticator("other-secret", testIssuer, testCookie, logger.Nop()),
		testCitizen, RolePatient, time.Hour)
	require.NoError(t, err)

	badSubject, err := issueToken(auth, "12345", RolePatient, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantUser   string
	}{
		{"anonymous", func(r *http.Request) {}, http.StatusOK, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, testCitizen},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: testCookie, Value: token}) }, http.StatusOK, testCitizen},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, http.StatusUnauthorized, ""},
		{"wrong key", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }, http.StatusUnauthorized, ""},
		{"subject is not a citizen ID", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+badSubject) }, http.StatusUnauthorized, ""},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(r)
			w := httptest.NewRecorder()

			auth.OptionalAuth(echoIdentity()).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, w.Header().Get("X-User"))
		})
	}
}

func TestAuthAndRequireAdmin(t *testing.T) {
	auth := newAuth()
	patient, err := issueToken(auth, testCitizen, RolePatient, time.Hour)
	require.NoError(t, err)
	admin, err := issueToken(auth, "admin-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	handler := auth.Auth(RequireAdmin(echoIdentity()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+patient)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Admin"))
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))

	given := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, given, seen)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "not-a-uuid")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEqual(t, "not-a-uuid", seen)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(addr string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002"))

	// Другой клиент имеет свою квоту
	assert.Equal(t, http.StatusCreated, send("10.0.0.2:5000"))

	// Неактивные клиенты забываются
	now = now.Add(visitorTTL + time.Second)
	rl.limiterFor("10.0.0.3")
	rl.mu.Lock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	rl.mu.Unlock()
}

func TestAccessLog_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, "debug")
	require.NoError(t, err)

	handler := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	r.Header.Set(HeaderRequestID, id)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, id, entry["request_id"])
	assert.Contains(t, entry["message"], "POST /api/v1/bookings -> 201")
}

func TestAccessLog_ServerErrorsAreErrors(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, "info")
	require.NoError(t, err)

	handler := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil))

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "-> 503")
}
