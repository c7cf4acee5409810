package auth

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/httputil"
	"github.com/ayush/travel-journal/backend/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
	log *logrus.Logger
}

func NewHandler(svc *Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateAccount registers a user and returns a token.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	sess, err := h.svc.CreateAccount(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"error":       false,
		"user":        sess.User.Public(),
		"accessToken": sess.Token,
		"message":     "Account created successfully",
	})
}

// Login authenticates a user and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"error":       false,
		"user":        sess.User.Public(),
		"accessToken": sess.Token,
		"message":     "Login successful",
	})
}

// Logout revokes the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.log, apperr.Auth("Access token required"))
		return
	}
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"message": "Logged out",
	})
}

// GetUser returns the currently authenticated user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"message": "",
	})
}
