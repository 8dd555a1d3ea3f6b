// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kulibrary/internal/domain"
	"kulibrary/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleList serves the catalog, optionally filtered by ?q=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if books == nil {
		books = []*domain.Book{}
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, domain.ErrValidation)
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ISBN          string `json:"isbn"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		PublishedYear int    `json:"published_year"`
		TotalCopies   int    `json:"total_copies"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	book, err := h.service.Add(r.Context(), req.ISBN, req.Title, req.Author, req.PublishedYear, req.TotalCopies)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}
