package models

import "time"

// Setting persists panel-wide key/value state that should survive restarts.
// Values are stored as raw JSON or scalar strings depending on the consumer.
type Setting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
