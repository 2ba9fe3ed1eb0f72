package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/usecase"
)

var tracer = otel.Tracer("session")

type SessionMiddleware struct {
	sessions usecase.AuthSessionStore
}

func NewSessionMiddleware(sessions usecase.AuthSessionStore) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
	}
}

// EnsureSession makes sure the request carries an opaque session ID cookie
// and puts the ID into the request context. The ID scopes pending ceremony
// state; it carries no identity.
func (s *SessionMiddleware) EnsureSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var sessionID string
		cookie, err := c.Cookie(domain.SessionCookieName)
		if err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID, err = newSessionID()
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to start session")
			}
			c.SetCookie(&http.Cookie{
				Name:     domain.SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   true,
				SameSite: http.SameSiteStrictMode,
			})
		}

		ctx = context.WithValue(ctx, domain.SessionIDCtxKey, sessionID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireIdentity resolves the authenticated-session cookie and puts the
// requester's username into the request context. Requests without a valid
// session are rejected.
func (s *SessionMiddleware) RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Session.Middleware.RequireIdentity")
		defer span.End()

		cookie, err := c.Cookie(domain.AuthCookieName)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		username, err := s.sessions.ResolveAuthSession(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired, sign in again")
			}
			span.RecordError(err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve session")
		}

		ctx = context.WithValue(ctx, domain.RequesterNameCtxKey, username)
		span.SetAttributes(attribute.String("RequesterName", username))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
