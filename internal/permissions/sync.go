package permissions

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
)

// Sync writes the registered permission definitions into the database so that
// roles can reference them. Existing rows are updated in place.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("permission sync: db is required")
	}
	ctx = ensureContext(ctx)

	for id, def := range GetAll() {
		implies := ""
		if len(def.Implies) > 0 {
			encoded, err := json.Marshal(def.Implies)
			if err != nil {
				return fmt.Errorf("permission sync: marshal implies for %q: %w", id, err)
			}
			implies = string(encoded)
		}

		record := models.Permission{
			BaseModel:   models.BaseModel{ID: id},
			Module:      def.Module,
			Description: def.Description,
			Implies:     implies,
		}

		if err := db.WithContext(ctx).
			Where("id = ?", id).
			Assign(map[string]any{
				"module":      record.Module,
				"description": record.Description,
				"implies":     record.Implies,
			}).
			FirstOrCreate(&models.Permission{}, record).Error; err != nil {
			return fmt.Errorf("permission sync: upsert %q: %w", id, err)
		}
	}

	return nil
}
