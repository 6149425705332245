package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/BradenHooton/userdesk/internal/auth"
	"github.com/BradenHooton/userdesk/internal/models"
	pkgauth "github.com/BradenHooton/userdesk/pkg/auth"
	pkglogger "github.com/BradenHooton/userdesk/pkg/logger"
)

// CredentialLookup finds the account a login attempt names
type CredentialLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        CredentialLookup
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(repo CredentialLookup, tm *auth.TokenManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LoginAttempt describes where a login came from, for the audit trail
type LoginAttempt struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// unknownUserHash is compared against when the username does not exist so
// that both failure paths pay for one bcrypt comparison
var unknownUserHash = sync.OnceValue(func() string {
	hash, err := pkgauth.HashPassword("unknown-user-placeholder-1")
	if err != nil {
		return ""
	}
	return hash
})

// Login verifies the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, attempt LoginAttempt) (*AuthResponse, error) {
	username := strings.TrimSpace(attempt.Username)
	if username == "" {
		s.logger.Warn("login attempt with empty username")
		return nil, models.ErrUnauthorized
	}

	event := pkglogger.AuditEvent{
		EventType: "login",
		Username:  username,
		IPAddress: attempt.IPAddress,
		UserAgent: attempt.UserAgent,
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = pkgauth.ComparePassword(unknownUserHash(), attempt.Password)
			s.logger.Info("login failed: invalid credentials")
			event.FailureReason = "invalid_credentials"
			s.auditLogger.LogAuthAttempt(event)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	event.UserID = user.ID

	if err := pkgauth.ComparePassword(user.PasswordHash, attempt.Password); err != nil {
		s.logger.Info("login failed: invalid credentials", slog.Int64("user_id", user.ID))
		event.FailureReason = "invalid_credentials"
		s.auditLogger.LogAuthAttempt(event)
		return nil, models.ErrUnauthorized
	}

	// checked after the password so inactive accounts are not discoverable
	if !user.Active {
		s.logger.Info("login blocked: account inactive", slog.Int64("user_id", user.ID))
		event.FailureReason = "account_inactive"
		s.auditLogger.LogAuthAttempt(event)
		return nil, models.ErrAccountInactive
	}

	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	event.Success = true
	s.auditLogger.LogAuthAttempt(event)

	return &AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tm.AccessTokenExpiry().Seconds()),
	}, nil
}
