package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IntList stores a list of hour offsets as a JSON column
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *IntList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return nil
}

// DeadlineRule maps a proposal status to a time window and the action taken
// when it elapses. ToStatus equal to FromStatus means notify only.
// OrganizationID zero marks a built-in default rule. NotificationHours is
// sorted descending (hours before the deadline at which to notify).
type DeadlineRule struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	OrganizationID    uint           `gorm:"index" json:"organization_id"`
	FromStatus        ProposalStatus `gorm:"size:20;not null;index" json:"from_status"`
	ToStatus          ProposalStatus `gorm:"size:20;not null" json:"to_status"`
	DeadlineHours     int            `gorm:"not null" json:"deadline_hours"`
	NotificationHours IntList        `gorm:"type:jsonb" json:"notification_hours"`
	AutoTransition    bool           `gorm:"default:false" json:"auto_transition"`
	RequiresApproval  bool           `gorm:"default:false" json:"requires_approval"`
	Description       string         `gorm:"type:text" json:"description"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (DeadlineRule) TableName() string {
	return "deadline_rules"
}

// DefaultDeadlineRules returns the built-in rule set used when an
// organization has no rules configured.
func DefaultDeadlineRules() []DeadlineRule {
	return []DeadlineRule{
		{
			ID:                uuid.New(),
			FromStatus:        StatusReview,
			ToStatus:          StatusDraft,
			DeadlineHours:     72,
			NotificationHours: IntList{48, 24, 6},
			AutoTransition:    true,
			Description:       "Reviews left unanswered for 72 hours return to draft",
		},
		{
			ID:                uuid.New(),
			FromStatus:        StatusSubmitted,
			ToStatus:          StatusArchived,
			DeadlineHours:     720,
			NotificationHours: IntList{168, 24},
			AutoTransition:    true,
			Description:       "Submitted proposals are archived after 30 days",
		},
		{
			ID:                uuid.New(),
			FromStatus:        StatusDraft,
			ToStatus:          StatusDraft,
			DeadlineHours:     168,
			NotificationHours: IntList{168, 24},
			AutoTransition:    false,
			Description:       "Remind owners about drafts idle for a week",
		},
	}
}

// CreateDeadlineRuleRequest represents an admin request to configure a rule
type CreateDeadlineRuleRequest struct {
	FromStatus        ProposalStatus `json:"from_status" binding:"required"`
	ToStatus          ProposalStatus `json:"to_status" binding:"required"`
	DeadlineHours     int            `json:"deadline_hours" binding:"required,gt=0"`
	NotificationHours []int          `json:"notification_hours"`
	AutoTransition    bool           `json:"auto_transition"`
	RequiresApproval  bool           `json:"requires_approval"`
	Description       string         `json:"description"`
}

// DeadlineCheckResult is the derived outcome of evaluating a proposal
// against its applicable rule. It is never persisted.
type DeadlineCheckResult struct {
	ProposalID            uuid.UUID      `json:"proposal_id"`
	CurrentStatus         ProposalStatus `json:"current_status"`
	StatusChangedAt       time.Time      `json:"status_changed_at"`
	DeadlineAt            time.Time      `json:"deadline_at"`
	HoursRemaining        float64        `json:"hours_remaining"`
	ShouldNotify          bool           `json:"should_notify"`
	ShouldTransition      bool           `json:"should_transition"`
	ApplicableRule        *DeadlineRule  `json:"applicable_rule"`
	NextNotificationHours *int           `json:"next_notification_hours"`
}

// DeadlineProcessingError records one failed proposal in a batch run
type DeadlineProcessingError struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Error      string    `json:"error"`
	Type       string    `json:"type"` // check, notification, transition
}

// DeadlineProcessingReport summarizes one batch run
type DeadlineProcessingReport struct {
	ProcessedAt          time.Time                 `json:"processed_at"`
	ProposalsChecked     int                       `json:"proposals_checked"`
	NotificationsSent    int                       `json:"notifications_sent"`
	TransitionsPerformed int                       `json:"transitions_performed"`
	Errors               []DeadlineProcessingError `json:"errors"`
}
