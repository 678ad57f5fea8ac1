package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
)

// BootstrapAdmin describes the initial root account ensured at start-up.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// EnsureAdminUser creates the bootstrap root account when no root user exists yet.
// An already-present root account is left untouched, including its password.
func EnsureAdminUser(ctx context.Context, db *gorm.DB, admin BootstrapAdmin) error {
	if db == nil {
		return errors.New("bootstrap: db is nil")
	}

	admin.Username = strings.TrimSpace(admin.Username)
	admin.Email = strings.TrimSpace(admin.Email)
	if admin.Username == "" || admin.Password == "" {
		return errors.New("bootstrap: admin username and password are required")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("is_root = ?", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("bootstrap: count root users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bootstrap: hash password: %w", err)
	}

	user := models.User{
		Username: admin.Username,
		Email:    admin.Email,
		Password: string(hash),
		IsRoot:   true,
		IsActive: true,
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("bootstrap: create admin user: %w", err)
	}

	var role models.Role
	if err := db.WithContext(ctx).First(&role, "id = ?", "admin").Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("bootstrap: load admin role: %w", err)
	}

	return db.WithContext(ctx).Model(&user).Association("Roles").Append(&role)
}
