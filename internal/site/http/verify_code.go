package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

// VerifyCodeHandler checks a submitted admin access code. Responses never
// reveal the configured secret, and a missing server-side secret is a 500,
// not an open door.
type VerifyCodeHandler struct {
	VerifyService *service.VerifyService
}

func (h *VerifyCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	remaining, retryAfter, err := h.VerifyService.VerifyCode(ctx, httpx.IPKeyExtractor(r), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeEmpty):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "code is required",
			})
		case errors.Is(err, service.ErrVerifyLimited):
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			httpx.WriteJSON(w, http.StatusTooManyRequests, VerifyCodeResponse{
				Valid:      false,
				Error:      "Too many attempts, try again later",
				RetryAfter: seconds,
			})
		case errors.Is(err, service.ErrCodeMismatch):
			httpx.WriteJSON(w, http.StatusOK, VerifyCodeResponse{
				Valid:             false,
				RemainingAttempts: &remaining,
			})
		case errors.Is(err, service.ErrVerifyDisabled):
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error: "server_error",
			})
		default:
			log.Error("verification failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error: "server_error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyCodeResponse{Valid: true})
}
