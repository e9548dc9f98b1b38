package handlers

import (
	"net/http"
	"time"

	"github.com/caseboard/visit-scheduler/internal/middleware"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	authService *services.AuthService
}

func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// tokenView is an API token without its hash.
type tokenView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Scope     string     `json:"scope"`
	CreatedBy string     `json:"createdBy"`
	ExpiresAt *time.Time `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newTokenView(token models.APIToken) tokenView {
	return tokenView{
		ID:        token.ID,
		Name:      token.Name,
		Scope:     token.Scope,
		CreatedBy: token.CreatedByUserID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
}

func (handler *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := handler.authService.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (handler *AdminHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	handler.setRole(w, r, models.RoleAdmin)
}

func (handler *AdminHandler) DemoteUser(w http.ResponseWriter, r *http.Request) {
	handler.setRole(w, r, models.RoleMember)
}

func (handler *AdminHandler) setRole(w http.ResponseWriter, r *http.Request, role models.Role) {
	userID := chi.URLParam(r, "id")
	if role != models.RoleAdmin && userID == middleware.GetUser(r.Context()).ID {
		writeError(w, &services.ValidationError{Fields: map[string]string{"id": "cannot demote yourself"}})
		return
	}

	if err := handler.authService.SetRole(r.Context(), userID, role); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AdminHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := handler.authService.ListTokens(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]tokenView, 0, len(tokens))
	for _, token := range tokens {
		views = append(views, newTokenView(token))
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateToken returns the raw token once; it cannot be read back later.
func (handler *AdminHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var input services.TokenInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	user := middleware.GetUser(r.Context())
	created, rawToken, err := handler.authService.CreateToken(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":   rawToken,
		"details": newTokenView(created),
	})
}

func (handler *AdminHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := handler.authService.DeleteToken(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
