package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Notification types emitted by the deadline processor
const (
	NotificationTypeDeadlineReminder = "deadline_reminder"
	NotificationTypeAutoTransition   = "status_auto_changed"
)

// Notification priorities
const (
	NotificationPriorityLow    = "low"
	NotificationPriorityNormal = "normal"
	NotificationPriorityHigh   = "high"
)

// Notification is a user-facing alert persisted for downstream rendering.
// Content carries the structured fields (proposal id, statuses, hours
// remaining, rule id) the UI needs.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"size:50;not null;index" json:"type"`
	Priority  string     `gorm:"size:20;not null;default:normal" json:"priority"`
	Title     string     `gorm:"size:500;not null" json:"title"`
	Content   JSONB      `gorm:"type:jsonb" json:"content"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
