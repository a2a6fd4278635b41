package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if t, ok := f[token]; ok {
		return t, nil
	}
	return nil, errors.New("token invalid")
}

type fakeAdmins map[string]bool

func (f fakeAdmins) IsAdmin(_ context.Context, uid string) (bool, error) {
	return f[uid], nil
}

func identityEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/who", func(c echo.Context) error {
		uid, _ := c.Get(KeyUID).(string)
		verified, _ := c.Get(KeyEmailVerified).(bool)
		return c.JSON(http.StatusOK, map[string]interface{}{"uid": uid, "verified": verified})
	}, mw)
	return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var tokens = fakeVerifier{
	"good": {UID: "asha", Claims: map[string]interface{}{"email_verified": true, "name": "Asha"}},
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddlewareWithVerifier(tokens, 0)
	e := identityEcho(m.RequireAuth)

	rec := do(e, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"unauthorized"`)

	rec = do(e, "forged")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_token")

	rec = do(e, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"uid":"asha","verified":true}`, rec.Body.String())
}

func TestOptionalAuthFallsBackToAnonymous(t *testing.T) {
	m := NewAuthMiddlewareWithVerifier(tokens, 0)
	e := identityEcho(m.OptionalAuth)

	rec := do(e, "forged")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"uid":"","verified":false}`, rec.Body.String())

	rec = do(e, "good")
	require.JSONEq(t, `{"uid":"asha","verified":true}`, rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddlewareWithVerifier(fakeVerifier{
		"ops":  {UID: "ops"},
		"good": {UID: "asha"},
	}, 0)
	e := echo.New()
	e.GET("/who", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		m.RequireAuth, RequireAdmin(fakeAdmins{"ops": true}))

	require.Equal(t, http.StatusForbidden, do(e, "good").Code)
	require.Equal(t, http.StatusNoContent, do(e, "ops").Code)
	require.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1"}, "203.0.113.5"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "198.51.100.2"}, "198.51.100.2"},
		{"forwarded wins", map[string]string{"X-Forwarded-For": "203.0.113.5", "CF-Connecting-IP": "198.51.100.2"}, "203.0.113.5"},
		{"empty forwarded", map[string]string{"X-Forwarded-For": " ,10.0.0.1"}, "unknown"},
		{"nothing", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/views", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, ClientAddress(req))
		})
	}
}
