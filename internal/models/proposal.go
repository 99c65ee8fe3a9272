package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProposalStatus string

const (
	StatusDraft     ProposalStatus = "draft"
	StatusReview    ProposalStatus = "review"
	StatusSubmitted ProposalStatus = "submitted"
	StatusArchived  ProposalStatus = "archived"
)

// Valid reports whether s is one of the four lifecycle statuses.
func (s ProposalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusSubmitted, StatusArchived:
		return true
	}
	return false
}

// Machine-readable transition reasons recorded in status history.
const (
	TransitionReasonReviewCompleted  = "review_completed"
	TransitionReasonDeadlineExceeded = "deadline_exceeded"
)

// Proposal represents one tender response tracked through the status
// lifecycle. Status only ever changes through the workflow service;
// archival is a status, not deletion.
type Proposal struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	Title           string          `gorm:"size:500;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	EstimatedValue  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"estimated_value"`
	Status          ProposalStatus  `gorm:"size:20;not null;default:draft;index" json:"status"`
	OwnerID         uint            `gorm:"not null;index" json:"owner_id"`
	OrganizationID  uint            `gorm:"not null;index" json:"organization_id"`
	StatusChangedAt time.Time       `json:"status_changed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// StatusHistoryEntry is the append-only audit record for a transition.
// ChangedBy is nil for system-initiated transitions. The most recent entry
// for a proposal anchors deadline calculations.
type StatusHistoryEntry struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	ProposalID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"proposal_id"`
	FromStatus       ProposalStatus `gorm:"size:20;not null" json:"from_status"`
	ToStatus         ProposalStatus `gorm:"size:20;not null" json:"to_status"`
	ChangedBy        *uint          `gorm:"index" json:"changed_by"`
	Comment          string         `gorm:"type:text" json:"comment"`
	TransitionReason string         `gorm:"size:100" json:"transition_reason"`
	Automatic        bool           `gorm:"default:false" json:"automatic"`
	ChangedAt        time.Time      `gorm:"not null;index" json:"changed_at"`
}

func (StatusHistoryEntry) TableName() string {
	return "status_history"
}

// CreateProposalRequest represents a request to create a draft proposal
type CreateProposalRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	EstimatedValue float64 `json:"estimated_value" binding:"omitempty,gte=0"`
}

// TransitionRequest represents a manual status transition request
type TransitionRequest struct {
	FromStatus       ProposalStatus `json:"from_status" binding:"required"`
	ToStatus         ProposalStatus `json:"to_status" binding:"required"`
	Comment          string         `json:"comment"`
	TransitionReason string         `json:"transition_reason"`
}

// TransitionResponse carries the updated proposal and the history entry
// written for it. History may be null if the audit write failed after the
// status update succeeded.
type TransitionResponse struct {
	Proposal *Proposal           `json:"proposal"`
	History  *StatusHistoryEntry `json:"history"`
}
