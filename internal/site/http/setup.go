package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

// SetupHandler bootstraps the first admin account, gated by the configured
// setup code. Safe to call again; re-runs only confirm the grant.
type SetupHandler struct {
	SetupService *service.SetupService
}

func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	user, err := h.SetupService.Setup(ctx, req.SetupCode, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSetupUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Invalid setup code",
			})
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidPassword):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: err.Error(),
			})
		default:
			log.Error("setup failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error: "server_error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserInfo{ID: user.ID, Email: user.Email})
}
