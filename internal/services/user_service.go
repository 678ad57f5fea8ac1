package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
	apperrors "github.com/samia-tarot/panel/pkg/errors"
	"github.com/samia-tarot/panel/pkg/logger"
	"github.com/samia-tarot/panel/pkg/metrics"
)

// UserService handles credential verification and profile lookups.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewUserService constructs a UserService using the provided database handle.
func NewUserService(db *gorm.DB, audit *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, audit: audit}, nil
}

// Authenticate verifies username/password credentials and records the login.
// Failures are indistinguishable to the caller: every mismatch maps to
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password, clientIP string) (*models.User, error) {
	ctx = ensureContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			s.auditLogin(ctx, nil, username, clientIP, "failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		if isUnavailableError(err) {
			return nil, apperrors.NewUnavailable(err)
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		s.auditLogin(ctx, &user.ID, username, clientIP, "failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		s.auditLogin(ctx, &user.ID, username, clientIP, "failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	updates := map[string]any{
		"last_login_at": &now,
		"last_login_ip": strings.TrimSpace(clientIP),
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		// Login still succeeds; the stamp is best effort.
		logger.WithModule("users").Warn("last-login stamp failed", zap.Error(err))
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.auditLogin(ctx, &user.ID, username, clientIP, "success")

	return &user, nil
}

// GetByID loads a user with roles and permissions preloaded.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user service: user id is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		if isUnavailableError(err) {
			return nil, apperrors.NewUnavailable(err)
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	return &user, nil
}

func (s *UserService) auditLogin(ctx context.Context, userID *string, username, clientIP, result string) {
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:    userID,
		Username:  username,
		Action:    "auth.login",
		Resource:  "auth:local",
		Result:    result,
		IPAddress: clientIP,
	})
}
