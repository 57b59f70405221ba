package http

import (
	"net/http"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

type InvitesHandler struct {
	InviteService *service.InviteService
}

func (h *InvitesHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Authentication required",
		})
		return
	}

	inv, err := h.InviteService.MintInvite(ctx, userID)
	if err != nil {
		log.Error("failed to mint invite", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "server_error",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteToResponse(inv))
}

func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	list, err := h.InviteService.ListInvites(ctx)
	if err != nil {
		log.Error("failed to list invites", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "server_error",
		})
		return
	}

	out := make([]InviteResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, inviteToResponse(inv))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func inviteToResponse(inv domain.InviteCode) InviteResponse {
	return InviteResponse{
		ID:        inv.ID,
		Code:      inv.Code,
		Used:      inv.Used,
		UsedBy:    inv.UsedBy,
		UsedAt:    inv.UsedAt,
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt,
	}
}
