package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/reqctx"
)

// Context keys set on echo.Context by the auth middleware.
const (
	KeyUID           = "uid"
	KeyEmailVerified = "email_verified"
	KeyName          = "name"
)

// TokenVerifier checks a bearer ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AdminChecker reports whether the signed-in uid holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	timeout  time.Duration
}

func NewAuthMiddleware(ctx context.Context, projectID string, timeout time.Duration) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return NewAuthMiddlewareWithVerifier(client, timeout), nil
}

func NewAuthMiddlewareWithVerifier(v TokenVerifier, timeout time.Duration) *AuthMiddleware {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuthMiddleware{verifier: v, timeout: timeout}
}

func (m *AuthMiddleware) verify(c echo.Context) (*auth.Token, bool, error) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, false, nil
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	ctx, cancel := context.WithTimeout(c.Request().Context(), m.timeout)
	defer cancel()
	token, err := m.verifier.VerifyIDToken(ctx, tokenStr)
	if err != nil {
		return nil, true, err
	}
	return token, true, nil
}

func setIdentity(c echo.Context, token *auth.Token) {
	c.Set(KeyUID, token.UID)
	verified, _ := token.Claims["email_verified"].(bool)
	c.Set(KeyEmailVerified, verified)
	name, _ := token.Claims["name"].(string)
	c.Set(KeyName, name)
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, present, err := m.verify(c)
		if !present {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		}
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid_token", "Unauthorized"))
		}
		setIdentity(c, token)
		return next(c)
	}
}

// OptionalAuth identifies the caller when a valid bearer token is present and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, present, err := m.verify(c)
		if present && err == nil {
			setIdentity(c, token)
		} else if present {
			c.Logger().Debugf("ignoring invalid bearer token: %v", err)
		}
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(checker AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get(KeyUID).(string)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
			}
			ok, err := checker.IsAdmin(c.Request().Context(), uid)
			if err != nil || !ok {
				return c.JSON(http.StatusForbidden, errorBody("forbidden", "admin role required"))
			}
			return next(c)
		}
	}
}

// ClientAddress attributes a request to a network address: the first
// X-Forwarded-For hop, then CF-Connecting-IP, else "unknown".
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}
	return model.UnknownAddress
}

// RequestContext copies the request id and client address into the request
// context so service logs carry them.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := reqctx.WithAddress(req.Context(), ClientAddress(req))
		if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
			ctx = reqctx.WithRID(ctx, rid)
		}
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

// RateLimitIdentifier keys echo's rate limiter by client address.
func RateLimitIdentifier(c echo.Context) (string, error) {
	addr := ClientAddress(c.Request())
	if addr == model.UnknownAddress {
		if host, _, err := net.SplitHostPort(c.Request().RemoteAddr); err == nil {
			return host, nil
		}
	}
	return addr, nil
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, msg string) map[string]errorPayload {
	return map[string]errorPayload{"error": {Code: code, Message: msg}}
}
