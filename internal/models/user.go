package models

import (
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWriter  Role = "writer"
)

// Organization is the tenant boundary. Every proposal read/write is scoped
// to one organization.
type Organization struct {
	ID                        uint      `gorm:"primaryKey" json:"id"`
	Name                      string    `gorm:"size:255;not null" json:"name"`
	RequireCommentOnApproval  bool      `gorm:"default:false" json:"require_comment_on_approval"`
	RequireCommentOnRejection bool      `gorm:"default:false" json:"require_comment_on_rejection"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

// User represents a member of an organization
type User struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Email          string        `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string        `gorm:"size:255" json:"full_name"`
	Role           Role          `gorm:"size:20;not null;default:writer" json:"role"`
	OrganizationID uint          `gorm:"not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Actor is the identity a workflow operation runs as. System is set for
// machine-initiated transitions (deadline processing, review resolution)
// so they are never attributed to a real user id.
type Actor struct {
	UserID         uint
	Role           Role
	OrganizationID uint
	System         bool
}

// SystemActor returns the reserved actor for machine-initiated transitions.
func SystemActor() Actor {
	return Actor{System: true}
}

// ChangedByID returns the user id to record in status history, or nil for
// the system actor.
func (a Actor) ChangedByID() *uint {
	if a.System {
		return nil
	}
	id := a.UserID
	return &id
}
