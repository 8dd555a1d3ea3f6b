// internal/auth/handler.go
package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"kulibrary/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleLogin issues a session token for valid credentials. Unknown email
// and wrong password get the same 401.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("user_id", result.User.ID.String()).Msg("login successful")
	httpx.JSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*LoginResult
	}{Success: true, LoginResult: result})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("member registered")
	httpx.JSON(w, http.StatusCreated, user)
}

// HandleLogout invalidates the presented token. Idempotent.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), httpx.BearerToken(r)); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleMe returns the profile behind the session token.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFrom(r.Context())
	httpx.JSON(w, http.StatusOK, user)
}

// HandleMembers lists all accounts; staff only.
func (h *Handler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}
