package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

type RegisterHandler struct {
	RegisterService *service.RegisterService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	user, err := h.RegisterService.Register(ctx, req.Email, req.Password, req.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidPassword):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: err.Error(),
			})
		case errors.Is(err, service.ErrInviteInvalid):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_invite",
				ErrorDescription: "Invalid or expired invite code",
			})
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
				Error:            "email_taken",
				ErrorDescription: "Email already registered",
			})
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error: "server_error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, UserInfo{ID: user.ID, Email: user.Email})
}
