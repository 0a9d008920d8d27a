package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Auth service.AuthService
	// CookieSecure is off in local development so the refresh cookie
	// survives plain-HTTP testing.
	CookieSecure bool
}

func NewAuthHandler(auth service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, CookieSecure: cookieSecure}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/verify-otp", h.verifyOTP)
	r.Post("/refresh-token", h.refresh)
	r.Post("/logout", h.logout)
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Auth.Register(r.Context(), &in); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification code sent",
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Auth.Login(r.Context(), &in); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "login code sent",
	})
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var in domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	pair, err := h.Auth.VerifyOTP(r.Context(), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	response.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := presentedRefreshToken(w, r)
	if !ok {
		return
	}
	pair, err := h.Auth.Refresh(r.Context(), token)
	if err != nil {
		response.FromError(w, err)
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	response.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := presentedRefreshToken(w, r)
	if !ok {
		return
	}
	if err := h.Auth.Logout(r.Context(), token); err != nil {
		response.FromError(w, err)
		return
	}
	h.clearRefreshCookie(w)
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

const refreshCookieName = "refresh_token"

// presentedRefreshToken takes the token from the body when present, falling
// back to the HttpOnly cookie set at issue time.
func presentedRefreshToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.BadRequest(w, "invalid JSON body")
			return "", false
		}
	}
	if in.RefreshToken != "" {
		return in.RefreshToken, true
	}
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	response.Unauthorized(w, "missing refresh token")
	return "", false
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/authorize",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Path:     "/api/authorize",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
