package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
)

// GetSetting retrieves a setting by key. Returns an empty string when not found.
func GetSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("settings: db is nil")
	}

	var setting models.Setting
	err := db.WithContext(ctx).Take(&setting, "key = ?", key).Error
	if err == nil {
		return setting.Value, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return "", fmt.Errorf("settings: get %q: %w", key, err)
}

// GetSettings fetches multiple keys in a single statement. Keys without a
// stored row are absent from the result map.
func GetSettings(ctx context.Context, db *gorm.DB, keys ...string) (map[string]string, error) {
	if db == nil {
		return nil, fmt.Errorf("settings: db is nil")
	}

	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	var rows []models.Setting
	if err := db.WithContext(ctx).Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("settings: get %v: %w", keys, err)
	}

	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// UpsertSetting stores or updates a setting value.
func UpsertSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	if db == nil {
		return fmt.Errorf("settings: db is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("settings: key is required")
	}

	record := models.Setting{
		Key:   key,
		Value: value,
	}

	if err := db.WithContext(ctx).
		Where("key = ?", key).
		Assign(map[string]any{"value": value}).
		FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("settings: upsert %q: %w", key, err)
	}

	return nil
}
