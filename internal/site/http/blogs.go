package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/slogx"
)

// defaultListLimit caps public blog listings when no limit is given.
const defaultListLimit = 50

type BlogsHandler struct {
	BlogService *service.BlogService
}

func (h *BlogsHandler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(limit int) ([]domain.Blog, error) {
		return h.BlogService.ListPublished(r.Context(), limit)
	})
}

func (h *BlogsHandler) HandleListFeatured(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(limit int) ([]domain.Blog, error) {
		return h.BlogService.ListFeatured(r.Context(), limit)
	})
}

func (h *BlogsHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(int) ([]domain.Blog, error) {
		return h.BlogService.ListAll(r.Context())
	})
}

func (h *BlogsHandler) writeList(w http.ResponseWriter, r *http.Request, list func(limit int) ([]domain.Blog, error)) {
	log := slogx.FromContext(r.Context())

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	blogs, err := list(limit)
	if err != nil {
		log.Error("failed to list blog posts", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "server_error",
		})
		return
	}

	out := make([]BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, blogToResponse(b))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *BlogsHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	b, err := h.BlogService.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeBlogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blogToResponse(b))
}

func (h *BlogsHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.BlogService.GetBlogByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeBlogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blogToResponse(b))
}

func (h *BlogsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.BlogService.CreateBlog(r.Context(), in)
	if err != nil {
		h.writeBlogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blogToResponse(b))
}

func (h *BlogsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.BlogService.UpdateBlog(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeBlogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blogToResponse(b))
}

func (h *BlogsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.BlogService.DeleteBlog(r.Context(), r.PathValue("id")); err != nil {
		h.writeBlogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogsHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.BlogInput, bool) {
	var req BlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return service.BlogInput{}, false
	}

	return service.BlogInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		FeaturedImage:   req.FeaturedImage,
		AuthorName:      req.AuthorName,
		Tags:            req.Tags,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsFeatured:      req.IsFeatured,
		IsPublished:     req.IsPublished,
	}, true
}

func (h *BlogsHandler) writeBlogError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrBlogNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Blog post not found",
		})
	case errors.Is(err, service.ErrBlogInvalid):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrBlogSlugConflict):
		httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:            "slug_conflict",
			ErrorDescription: err.Error(),
		})
	default:
		log.Error("blog operation failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "server_error",
		})
	}
}

func blogToResponse(b domain.Blog) BlogResponse {
	return BlogResponse{
		ID:              b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Excerpt:         b.Excerpt,
		Content:         b.Content,
		FeaturedImage:   b.FeaturedImage,
		AuthorName:      b.AuthorName,
		Tags:            b.Tags,
		MetaTitle:       b.MetaTitle,
		MetaDescription: b.MetaDescription,
		IsFeatured:      b.IsFeatured,
		IsPublished:     b.IsPublished,
		PublishedAt:     b.PublishedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
