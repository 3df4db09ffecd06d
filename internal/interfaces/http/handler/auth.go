package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsession "github.com/rental/backoffice/internal/application/session"
	"github.com/rental/backoffice/internal/interfaces/http/dto"
	"github.com/rental/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler handles login, logout and the current session state
type AuthHandler struct {
	BaseHandler
	sessions middleware.SessionConfig
	gate     appsession.Gate
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions middleware.SessionConfig, gate appsession.Gate) *AuthHandler {
	if sessions.Logger == nil {
		sessions.Logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, gate: gate}
}

// LoginRequest is the login form. From is the route the user was sent away
// from, returned as the redirect target on success.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
	From     string `json:"from" binding:"max=500"`
}

// AuthResponse is the session state plus where the client should go next
type AuthResponse struct {
	appsession.State
	Redirect string `json:"redirect,omitempty"`
}

// Login authenticates against the backend. A successful login moves the
// client to a fresh session id; a failed one answers 401 with the state
// carrying the error message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	id := uuid.New()
	s := h.sessions.Manager.Get(id)
	ctx := appsession.WithSession(c.Request.Context(), s)
	st := s.Login(ctx, req.Username, req.Password)
	if !st.IsAuthenticated {
		h.sessions.Manager.Remove(id)
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, st.Error, middleware.GetRequestID(c))
		resp.Data = AuthResponse{State: st}
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	if err := middleware.IssueSessionCookie(c, h.sessions, id); err != nil {
		s.Wipe(ctx)
		h.sessions.Manager.Remove(id)
		h.HandleError(c, err)
		return
	}

	if prev := middleware.CurrentSession(c); prev != nil && prev.ID() != id {
		if prev.State().IsAuthenticated {
			prev.Logout(c.Request.Context())
		}
		h.sessions.Manager.Remove(prev.ID())
	}

	h.Success(c, AuthResponse{State: st, Redirect: h.gate.AfterLogin(req.From)})
}

// Logout ends the session. The backend is told on a best-effort basis and
// the local credentials are always cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if s == nil {
		h.Success(c, AuthResponse{Redirect: h.gate.LoginPath})
		return
	}
	st := s.Logout(c.Request.Context())
	h.Success(c, AuthResponse{State: st, Redirect: h.gate.LoginPath})
}

// Me re-validates stored credentials against the backend and returns the state
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if s == nil {
		h.Success(c, AuthResponse{})
		return
	}
	h.Success(c, AuthResponse{State: s.Init(c.Request.Context())})
}

// GateHandler exposes the route gate to front-ends
type GateHandler struct {
	BaseHandler
	gate appsession.Gate
}

// NewGateHandler creates a new GateHandler
func NewGateHandler(gate appsession.Gate) *GateHandler {
	return &GateHandler{gate: gate}
}

// GateQuery is the route being checked
type GateQuery struct {
	Path string `form:"path" binding:"required,startswith=/,max=500"`
}

// Check decides whether the caller may enter the given route
func (h *GateHandler) Check(c *gin.Context) {
	var q GateQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var st appsession.State
	if s := middleware.CurrentSession(c); s != nil {
		st = s.Restore(c.Request.Context())
	}
	h.Success(c, h.gate.Decide(q.Path, st))
}
