package handlers

import (
	"log/slog"
	"net/http"

	"github.com/caseboard/visit-scheduler/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !handler.authService.OIDCConfigured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "OIDC not configured, use POST /auth/dev"})
		return
	}

	state, err := handler.authService.GenerateState()
	if err != nil {
		slog.Error("generating state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, handler.authService.LoginURL(state), http.StatusFound)
}

func (handler *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing state cookie"})
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing code"})
		return
	}

	user, err := handler.authService.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("handling callback", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
		return
	}

	if !handler.startSession(w, user.ID) {
		return
	}
	http.Redirect(w, r, "/api/staff", http.StatusFound)
}

// DevLogin opens a session as the local dev coordinator. The route only
// exists while OIDC is unset.
func (handler *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	user, err := handler.authService.DevLogin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !handler.startSession(w, user.ID) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AuthHandler) startSession(w http.ResponseWriter, userID string) bool {
	if err := handler.authService.SetSession(w, userID); err != nil {
		slog.Error("setting session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session error"})
		return false
	}
	return true
}
