package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/jwtx"
	"github.com/paymall/site-api/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "email and password are required",
		})
		return
	}

	token, user, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "Invalid email or password",
			})
		case errors.Is(err, service.ErrNoAdminPrivileges):
			httpx.WriteJSON(w, http.StatusForbidden, ErrorResponse{
				Error:            "forbidden",
				ErrorDescription: "No admin privileges",
			})
		default:
			log.Error("login failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error: "server_error",
			})
		}
		return
	}

	ttl := h.AuthService.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(ttl),
		User:      UserInfo{ID: user.ID, Email: user.Email},
	})
}

type LogoutHandler struct {
	AuthService *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sessionID := httpx.SessionIDFromContext(ctx)
	if sessionID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Authentication required",
		})
		return
	}

	if err := h.AuthService.Logout(ctx, sessionID); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "server_error",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SessionHandler reports the authenticated admin's own session. It sits
// behind requireAdmin, so reaching it means the session is live.
type SessionHandler struct {
	AuthService *service.AuthService
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := httpx.SessionIDFromContext(ctx)
	sess, user, err := h.AuthService.ResolveSession(ctx, sessionID)
	if err != nil {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Session expired or revoked",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SessionResponse{
		User:      UserInfo{ID: user.ID, Email: user.Email},
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	})
}
