package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

type LeadsHandler struct {
	LeadService *service.LeadService
}

func (h *LeadsHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ContactRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	err := h.LeadService.SubmitContactRequest(ctx, req.Name, req.Email, req.Company, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrLeadInvalid) {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: err.Error(),
			})
			return
		}
		log.Error("contact submission failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server_error"})
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *LeadsHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ReviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	err := h.LeadService.SubmitReview(ctx, req.Name, req.Email, req.Rating, req.Review)
	if err != nil {
		if errors.Is(err, service.ErrLeadInvalid) || errors.Is(err, service.ErrReviewInvalid) {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: err.Error(),
			})
			return
		}
		log.Error("review submission failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server_error"})
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *LeadsHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SubscribeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	err := h.LeadService.Subscribe(ctx, req.Email, req.Source)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, SubscribeResponse{Subscribed: true})
	case errors.Is(err, service.ErrAlreadySubscribed):
		// A repeat opt-in is fine; tell the caller and move on.
		httpx.WriteJSON(w, http.StatusOK, SubscribeResponse{
			Subscribed:        true,
			AlreadySubscribed: true,
		})
	case errors.Is(err, service.ErrSubscriberNoEmail):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
	default:
		log.Error("subscription failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server_error"})
	}
}

func writeInvalidJSON(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:            "invalid_request",
		ErrorDescription: "Invalid JSON body",
	})
}
