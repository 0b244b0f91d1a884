package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/tokens"
)

const userIDKey = "user_id"

var ErrNoUser = errors.New("unauthorized")

// Refresher rotates a refresh token into a new session pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret    []byte
	Refresher    Refresher
	CookieSecure bool
}

func NewAutoRefreshMiddleware(secret []byte, r Refresher, cookieSecure bool) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:    secret,
		Refresher:    r,
		CookieSecure: cookieSecure,
	}
}

// RequireAuth accepts a valid access cookie. When the access token is missing
// or expired and a refresh cookie is present the session is rotated in place
// and the request continues with the new identity.
func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth")

		access := cookieValue(c, tokens.AccessCookie)
		if access != "" {
			claims, err := tokens.AccessClaimsFromToken(access, m.JWTSecret)
			if err == nil {
				c.Set(userIDKey, claims.Subject)
				return next(c)
			}
			l.Debug("access_token_rejected", "error", err)
		}

		refresh := cookieValue(c, tokens.RefreshCookie)
		if refresh == "" {
			if access == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token provided")
			}
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, invalid token")
		}

		pair, err := m.Refresher.Refresh(c.Request().Context(), refresh)
		if err != nil {
			l.Warn("session_refresh_failed", "status", 401, "error", err)
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, session expired")
		}
		for _, ck := range tokens.SessionCookies(pair, m.CookieSecure) {
			c.SetCookie(ck)
		}

		claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
		if err != nil {
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, invalid token")
		}
		l.Info("session_refreshed", "user_id", claims.Subject)

		c.Set(userIDKey, claims.Subject)
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) clearAuthCookies(c echo.Context) {
	for _, ck := range tokens.ClearSessionCookies(m.CookieSecure) {
		c.SetCookie(ck)
	}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// UserID returns the identity RequireAuth stored on the context.
func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(userIDKey).(string)
	if !ok || s == "" {
		return uuid.Nil, ErrNoUser
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrNoUser
	}
	return id, nil
}

// SetUserID is used by tests that bypass RequireAuth.
func SetUserID(c echo.Context, id uuid.UUID) {
	c.Set(userIDKey, id.String())
}
