package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
)

// CookieName is the demo session cookie carrying the user id.
const CookieName = "userId"

// Middleware resolves the acting user from the session cookie or the
// X-User-ID header and stores it on the request context. Requests without an
// identity are rejected before reaching the handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			id = strings.TrimSpace(cookie.Value)
		}
		if id == "" {
			id = strings.TrimSpace(r.Header.Get("X-User-ID"))
		}
		if id == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), id)))
	})
}

// LoginHandler provisions demo identities. There is no password check; this
// mirrors the throwaway login used by the admin UI.
type LoginHandler struct {
	users repository.UserRepository
}

// NewLoginHandler wires the handler to the user store.
func NewLoginHandler(users repository.UserRepository) *LoginHandler {
	return &LoginHandler{users: users}
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = "Demo User"
	}

	// Logging in again with the same email resolves to the same identity, so
	// record ownership survives across sessions.
	id := "demo-" + uuid.NewString()
	if req.Email != "" {
		id = "demo-" + strings.ToLower(req.Email)
	}

	user := domain.User{
		ID:    id,
		Email: req.Email,
		Name:  req.Name,
	}

	stored, err := h.users.Ensure(r.Context(), user)
	if err != nil {
		logrus.WithError(err).Error("failed to provision demo user")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    stored.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(stored)
}
