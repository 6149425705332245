package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/userdesk/internal/auth"
	"github.com/BradenHooton/userdesk/internal/models"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// UserService defines the interface for user business logic
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SearchUsers(ctx context.Context, criteria models.FilterCriteria) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, address string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Password    string   `json:"password" validate:"required"`
	Birthday    string   `json:"birthday" validate:"omitempty,birthday"`
	Address     string   `json:"address" validate:"max=255"`
	Authorities []string `json:"authorities" validate:"omitempty,dive,oneof=ROLE_ADMIN ROLE_USER"`
}

// UpdateUserRequest carries the only field an update may change
type UpdateUserRequest struct {
	Address string `json:"address" validate:"max=255"`
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Birthday    *string  `json:"birthday"`
	Address     string   `json:"address"`
	Authorities []string `json:"authorities"`
	Active      bool     `json:"active"`
}

func userModelToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Address:     user.Address,
		Authorities: user.Authorities,
		Active:      user.Active,
	}
	if resp.Authorities == nil {
		resp.Authorities = []string{}
	}
	if user.Birthday != nil {
		day := user.Birthday.Format(models.BirthdayLayout)
		resp.Birthday = &day
	}
	return resp
}

func usersToResponse(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, user := range users {
		out[i] = userModelToResponse(user)
	}
	return out
}

// RegisterRoutes registers the read-only user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/user", h.FindUsers)
	r.Get("/user/all", h.ListAllUsers)
	r.Get("/user/{id}", h.GetUser)
}

// RegisterAdminRoutes registers the user routes that mutate state
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/user", h.CreateUser)
	r.Put("/user/{id}", h.UpdateUser)
	r.Delete("/user/{id}", h.DeleteUser)
}

// GetUser retrieves a user by ID
//
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, fmt.Sprintf("User with id %d not found", id))
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// ListAllUsers returns every user, or 204 when there are none
//
// @Router /user/all [get]
func (h *UserHandler) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	if len(users) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, usersToResponse(users))
}

// FindUsers searches by username, birthday or email. Changing the active
// flag through the reactive parameter is reserved for administrators.
//
// @Param username query string false "Username substring"
// @Param birthday query string false "Birthday (yyyy-mm-dd)"
// @Param email query string false "Exact email"
// @Param reactive query bool false "Set the active flag of matched users"
// @Router /user [get]
func (h *UserHandler) FindUsers(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseFilterCriteria(r.URL.Query())
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if criteria.Reactivate != nil {
		principal := auth.PrincipalFromContext(r.Context())
		if principal == nil || !principal.IsAdmin() {
			pkghttp.WriteForbidden(w, "Changing the active flag requires administrator rights")
			return
		}
	}

	users, err := h.service.SearchUsers(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, err, "No matching users")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, usersToResponse(users))
}

// CreateUser creates a new user
//
// @Router /user [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "validation_failed", "Invalid request", err.Error())
		return
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Address:     req.Address,
		Authorities: req.Authorities,
	}
	if req.Birthday != "" {
		// format already checked by the birthday validator
		day, _ := time.Parse(models.BirthdayLayout, req.Birthday)
		user.Birthday = &day
	}

	created, err := h.service.CreateUser(r.Context(), user, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, fmt.Sprintf("Unable to create. A user with username %s or email %s already exists", req.Username, req.Email))
			return
		}
		writeServiceError(w, err, "")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/user/%d", created.ID))
	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(created))
}

// UpdateUser replaces the address of a user
//
// @Router /user/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "validation_failed", "Invalid request", err.Error())
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), id, req.Address)
	if err != nil {
		writeServiceError(w, err, fmt.Sprintf("Unable to update. User with id %d not found", id))
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(updated))
}

// DeleteUser deletes a user. Deleting the last administrator is refused
// with a not found response.
//
// @Router /user/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, err, fmt.Sprintf("Unable to delete. User with id %d not found", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseUserID reads the numeric {id} URL parameter, writing a 400 when it is malformed
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		pkghttp.WriteBadRequest(w, fmt.Sprintf("Invalid user id %q", raw))
		return 0, false
	}
	return id, true
}

// parseFilterCriteria builds FilterCriteria from the query string. username
// and email count as supplied whenever the key is present, even when empty;
// birthday and reactive are ignored when empty.
func parseFilterCriteria(query url.Values) (models.FilterCriteria, error) {
	var criteria models.FilterCriteria

	if _, ok := query["username"]; ok {
		username := query.Get("username")
		criteria.Username = &username
	}

	if raw := query.Get("birthday"); raw != "" {
		day, err := time.Parse(models.BirthdayLayout, raw)
		if err != nil {
			return criteria, fmt.Errorf("invalid birthday %q, expected yyyy-mm-dd", raw)
		}
		criteria.Birthday = &day
	}

	if _, ok := query["email"]; ok {
		email := query.Get("email")
		criteria.Email = &email
	}

	if raw := query.Get("reactive"); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, fmt.Errorf("invalid reactive flag %q, expected true or false", raw)
		}
		criteria.Reactivate = &flag
	}

	return criteria, nil
}
