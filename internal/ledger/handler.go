// internal/ledger/handler.go
package ledger

import (
	"net/http"
	"time"

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

// loanResponse is the envelope for loan transitions.
type loanResponse struct {
	Success bool            `json:"success"`
	Loan    domain.LoanView `json:"loan"`
}

// HandleBorrow lends a book to the authenticated user.
func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFrom(r.Context())

	var req struct {
		BookID uuid.UUID `json:"book_id"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.BookID == uuid.Nil {
		httpx.Error(w, r, domain.ErrValidation)
		return
	}

	loan, err := h.service.Borrow(r.Context(), req.BookID, user.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loanResponse{Success: true, Loan: loan.View(time.Now())})
}

func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.decodeLoanID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	loan, err := h.service.Return(r.Context(), loanID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loanResponse{Success: true, Loan: loan.View(time.Now())})
}

func (h *Handler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.decodeLoanID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	loan, err := h.service.Renew(r.Context(), loanID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loanResponse{Success: true, Loan: loan.View(time.Now())})
}

// HandleList serves the authenticated user's loans, derived overdue state
// included.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFrom(r.Context())

	loans, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loans)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) decodeLoanID(r *http.Request) (uuid.UUID, error) {
	var req struct {
		LoanID uuid.UUID `json:"loan_id"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		return uuid.Nil, err
	}
	if req.LoanID == uuid.Nil {
		return uuid.Nil, domain.ErrValidation
	}
	return req.LoanID, nil
}
