package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/userdesk/internal/models"
	"github.com/BradenHooton/userdesk/internal/services"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
)

// AuthService defines the interface for auth business logic
type AuthService interface {
	Login(ctx context.Context, attempt services.LoginAttempt) (*services.AuthResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service    AuthService
	ipResolver *pkghttp.IPResolver
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, ipResolver *pkghttp.IPResolver) *AuthHandler {
	return &AuthHandler{
		service:    service,
		ipResolver: ipResolver,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// Login exchanges a username and password for an access token
//
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "validation_failed", "Invalid request", err.Error())
		return
	}

	authResp, err := h.service.Login(r.Context(), services.LoginAttempt{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: h.ipResolver.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrAccountInactive):
			pkghttp.WriteForbidden(w, "Account is inactive")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}
