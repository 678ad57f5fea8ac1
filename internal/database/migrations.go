package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
	"github.com/samia-tarot/panel/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AuditLog{},
		&models.Setting{},
		&models.CacheEntry{},
	)
}

// SeedData populates default roles and syncs the permission registry.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	adminPerms := make([]models.Permission, 0)
	for id := range permissions.GetAll() {
		adminPerms = append(adminPerms, models.Permission{BaseModel: models.BaseModel{ID: id}})
	}

	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: "admin"},
			Name:        "Administrator",
			Description: "Full panel access",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: "viewer"},
			Name:        "Viewer",
			Description: "Read-only access to validation status",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).
			Attrs(role).
			FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	var admin models.Role
	if err := db.First(&admin, "id = ?", "admin").Error; err != nil {
		return err
	}
	if err := db.Model(&admin).Association("Permissions").Replace(adminPerms); err != nil {
		return err
	}

	var viewer models.Role
	if err := db.First(&viewer, "id = ?", "viewer").Error; err != nil {
		return err
	}
	viewerPerms := []models.Permission{
		{BaseModel: models.BaseModel{ID: permissions.PanelView}},
		{BaseModel: models.BaseModel{ID: permissions.AuditView}},
	}
	return db.Model(&viewer).Association("Permissions").Replace(viewerPerms)
}
