package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/userdesk/internal/auth"
	"github.com/BradenHooton/userdesk/internal/models"
	"github.com/BradenHooton/userdesk/internal/services"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithPrincipal puts user on the request context as the authenticated principal
func WithPrincipal(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), user))
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the error envelope and returns it for further assertions
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// AdminUser and RegularUser are principals for authorization tests
func AdminUser() *models.User {
	return &models.User{ID: 1, Username: "admin", Email: "admin@example.com", Authorities: []string{models.RoleAdmin, models.RoleUser}, Active: true}
}

func RegularUser() *models.User {
	return &models.User{ID: 2, Username: "alice", Email: "alice@example.com", Authorities: []string{models.RoleUser}, Active: true}
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserByIDFunc func(ctx context.Context, id int64) (*models.User, error)
	ListUsersFunc   func(ctx context.Context) ([]*models.User, error)
	SearchUsersFunc func(ctx context.Context, criteria models.FilterCriteria) ([]*models.User, error)
	CreateUserFunc  func(ctx context.Context, user *models.User, password string) (*models.User, error)
	UpdateUserFunc  func(ctx context.Context, id int64, address string) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, id int64) error
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserService) SearchUsers(ctx context.Context, criteria models.FilterCriteria) ([]*models.User, error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, criteria)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) UpdateUser(ctx context.Context, id int64, address string) (*models.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, address)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, attempt services.LoginAttempt) (*services.AuthResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, attempt services.LoginAttempt) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, attempt)
	}
	return nil, models.ErrUnauthorized
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	return m.Err
}
