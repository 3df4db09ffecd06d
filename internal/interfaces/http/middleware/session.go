package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsession "github.com/rental/backoffice/internal/application/session"
	"github.com/rental/backoffice/internal/infrastructure/logger"
	"github.com/rental/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys and headers
const (
	SessionKey = "session"
	// ClientRouteHeader carries the front-end route the user was on, so a
	// rejected request can send them back there after login
	ClientRouteHeader = "X-Client-Route"
)

// SessionTokens issues and verifies the signed session cookie value
type SessionTokens interface {
	Issue(sessionID uuid.UUID) (string, time.Time, error)
	Parse(token string) (uuid.UUID, error)
}

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	Tokens       SessionTokens
	Manager      *appsession.Manager
	CookieName   string
	CookieDomain string
	CookieSecure bool
	Logger       *zap.Logger
}

// Session attaches the caller's session to the request. A missing or
// invalid cookie starts a new anonymous session and sets a fresh cookie.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		id, ok := readSessionCookie(c, cfg)
		if !ok {
			id = uuid.New()
			if err := IssueSessionCookie(c, cfg, id); err != nil {
				cfg.Logger.Error("Failed to issue session cookie", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal, "Unable to start session", GetRequestID(c)))
				return
			}
		}

		s := cfg.Manager.Get(id)
		ctx := appsession.WithSession(c.Request.Context(), s)
		ctx, _ = logger.WithSessionID(ctx, logger.FromContext(ctx), id.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(SessionKey, s)
		c.Next()
	}
}

func readSessionCookie(c *gin.Context, cfg SessionConfig) (uuid.UUID, bool) {
	raw, err := c.Cookie(cfg.CookieName)
	if err != nil || raw == "" {
		return uuid.Nil, false
	}
	id, err := cfg.Tokens.Parse(raw)
	if err != nil {
		cfg.Logger.Debug("Ignoring invalid session cookie", zap.Error(err))
		return uuid.Nil, false
	}
	return id, true
}

// IssueSessionCookie signs id and sets it as the session cookie
func IssueSessionCookie(c *gin.Context, cfg SessionConfig, id uuid.UUID) error {
	token, expiresAt, err := cfg.Tokens.Issue(id)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, maxAge, "/", cfg.CookieDomain, cfg.CookieSecure, true)
	return nil
}

// CurrentSession returns the session attached by Session, or nil
func CurrentSession(c *gin.Context) *appsession.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*appsession.Session); ok {
			return s
		}
	}
	return appsession.FromContext(c.Request.Context())
}

// RequireSession rejects requests whose session is not logged in. The 401
// body carries the login redirect computed by the gate, remembering the
// route from the X-Client-Route header.
func RequireSession(gate appsession.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s != nil {
			if st := s.Restore(c.Request.Context()); st.IsAuthenticated {
				c.Next()
				return
			}
		}

		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Login required", GetRequestID(c))
		resp.Error.Redirect = gate.LoginRedirect(c.GetHeader(ClientRouteHeader))
		c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
	}
}
