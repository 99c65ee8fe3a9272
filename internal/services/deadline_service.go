package services

import (
	"time"

	"caredraft/internal/models"
)

// DeadlineService evaluates proposals against declarative deadline rules.
// It is read-only; the batch processor acts on its results. Callers are
// expected to invoke it at least once per hour: each notification offset
// fires within a 1-hour window, so slower polling can miss offsets and
// faster polling can duplicate them.
type DeadlineService struct {
	now func() time.Time
}

func NewDeadlineService() *DeadlineService {
	return &DeadlineService{now: time.Now}
}

// CheckDeadline evaluates one proposal against the rule set. The first rule
// whose FromStatus matches the proposal's current status applies; nil means
// no deadline is tracked for this status.
func (s *DeadlineService) CheckDeadline(
	proposal *models.Proposal,
	lastStatusChangeAt time.Time,
	rules []models.DeadlineRule,
) *models.DeadlineCheckResult {
	var rule *models.DeadlineRule
	for i := range rules {
		if rules[i].FromStatus == proposal.Status {
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		return nil
	}

	now := s.now()
	deadlineAt := lastStatusChangeAt.Add(time.Duration(rule.DeadlineHours) * time.Hour)

	hoursRemaining := deadlineAt.Sub(now).Hours()
	if hoursRemaining < 0 {
		hoursRemaining = 0
	}

	shouldNotify := false
	for _, offset := range rule.NotificationHours {
		windowStart := deadlineAt.Add(-time.Duration(offset) * time.Hour)
		if !now.Before(windowStart) && now.Before(windowStart.Add(time.Hour)) {
			shouldNotify = true
			break
		}
	}

	// NotificationHours is sorted descending, so the first offset still
	// ahead of the clock is the next one due.
	var next *int
	for _, offset := range rule.NotificationHours {
		if float64(offset) < hoursRemaining {
			o := offset
			next = &o
			break
		}
	}

	return &models.DeadlineCheckResult{
		ProposalID:            proposal.ID,
		CurrentStatus:         proposal.Status,
		StatusChangedAt:       lastStatusChangeAt,
		DeadlineAt:            deadlineAt,
		HoursRemaining:        hoursRemaining,
		ShouldNotify:          shouldNotify,
		ShouldTransition:      rule.AutoTransition && hoursRemaining <= 0,
		ApplicableRule:        rule,
		NextNotificationHours: next,
	}
}
