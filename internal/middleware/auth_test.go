package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid, _ := TenantIDFromContext(r.Context())
		_, _ = w.Write([]byte(tid))
	})
}

func TestAuthenticator_RoundTrip(t *testing.T) {
	auth := NewAuthenticator("0123456789abcdef")
	tok, err := auth.SignToken("u1", "t1", "a@b.c", time.Hour)
	require.NoError(t, err)

	h := auth.WithAuth(RequireAuth(tenantEcho()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", rec.Body.String())
}

func TestAuthenticator_Rejects(t *testing.T) {
	auth := NewAuthenticator("0123456789abcdef")
	other := NewAuthenticator("fedcba9876543210")
	foreign, err := other.SignToken("u1", "t1", "a@b.c", time.Hour)
	require.NoError(t, err)
	expired, err := auth.SignToken("u1", "t1", "a@b.c", -time.Minute)
	require.NoError(t, err)

	h := auth.WithAuth(RequireAuth(tenantEcho()))
	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer nope",
		"foreign": "Bearer " + foreign,
		"expired": "Bearer " + expired,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	h := CORS([]string{"https://a.example"})(next)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://a.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://a.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req.Header.Set("Origin", "https://b.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec = httptest.NewRecorder()
	CORS(nil)(next).ServeHTTP(rec, pre)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLocaleMiddleware(t *testing.T) {
	var got string
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ru", got)

	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "ru")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en", got)
}
