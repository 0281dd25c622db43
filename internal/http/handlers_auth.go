package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/auth"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "invalid_email", Message: "a valid email is required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "weak_password", Message: "password must be at least 8 characters"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.auth.CreateUser(r.Context(), req.Email, hash); err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User registered", applog.FieldUserKey, req.Email)
	writeJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	hash, err := s.auth.Credentials(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !auth.CheckPassword(hash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: "invalid credentials"})
		return
	}

	token, err := auth.NewToken()
	if err != nil {
		writeError(w, r, err)
		return
	}
	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.auth.CreateToken(r.Context(), token, req.Email, expiresAt); err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	slog.InfoContext(r.Context(), "User logged in", applog.FieldUserKey, req.Email)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, userKey string) {
	if token := bearerToken(r); token != "" {
		if err := s.auth.DeleteToken(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	slog.InfoContext(r.Context(), "User logged out", applog.FieldUserKey, userKey)
	writeJSON(w, http.StatusNoContent, nil)
}
