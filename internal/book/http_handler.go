package book

import (
	"errors"
	"net/http"
	"strconv"

	"bookfreq/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type processRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type analyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

// List handles GET /v1/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	books, total, err := h.service.List(r.Context(), Query{
		Q:      query.Get("q"),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Lookup handles GET /v1/books/lookup?title=
func (h *HTTPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Lookup(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Process handles POST /v1/books/process
func (h *HTTPHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.Process(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, res)
}

// Analyze handles POST /v1/analyze
func (h *HTTPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	words, err := h.service.Analyze(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, words, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case IsFetchError(err):
		httpx.JSONError(w, r, http.StatusBadGateway, "FETCH_FAILED", "Could not download the book: "+err.Error(), nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
