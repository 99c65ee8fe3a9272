package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDecision is a reviewer's individual vote. It is deliberately a
// distinct type from ProposalStatus.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)

func (d ReviewDecision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// ReviewerAssignment is a pending or completed review task. While
// CompletedAt is nil the assignment is pending; it is completed exactly once.
type ReviewerAssignment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	ProposalID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"proposal_id"`
	ReviewerID     uint            `gorm:"not null;index" json:"reviewer_id"`
	AssignedBy     uint            `gorm:"not null" json:"assigned_by"`
	AssignedAt     time.Time       `gorm:"not null" json:"assigned_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
	Decision       *ReviewDecision `gorm:"size:20" json:"decision"`
	ReviewComments string          `gorm:"type:text" json:"review_comments"`
}

func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}

// AssignReviewersRequest represents a request to (re)assign reviewers
type AssignReviewersRequest struct {
	ReviewerIDs []uint `json:"reviewer_ids" binding:"required,min=1"`
}

// SubmitDecisionRequest represents a reviewer's vote on a proposal
type SubmitDecisionRequest struct {
	Decision ReviewDecision `json:"decision" binding:"required"`
	Comments string         `json:"comments"`
}

// ReviewOutcome is the result of submitting a decision. Pending is true
// until every assignment for the proposal has completed; once all have,
// FinalStatus carries the collective outcome and Proposal/History the
// transition performed for it.
type ReviewOutcome struct {
	Pending     bool                `json:"pending"`
	Approvals   int                 `json:"approvals"`
	Rejections  int                 `json:"rejections"`
	FinalStatus ProposalStatus      `json:"final_status,omitempty"`
	Proposal    *Proposal           `json:"proposal,omitempty"`
	History     *StatusHistoryEntry `json:"history,omitempty"`
}
