package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"caredraft/internal/models"
	"caredraft/internal/repository"
)

// DeadlineProcessor runs the batch deadline check over all active
// proposals. Failures are isolated per proposal: one bad proposal never
// stops the rest of the batch.
type DeadlineProcessor struct {
	repo      *repository.Repository
	deadlines *DeadlineService
	workflow  *WorkflowService
	sink      NotificationSink
}

func NewDeadlineProcessor(
	repo *repository.Repository,
	deadlines *DeadlineService,
	workflow *WorkflowService,
	sink NotificationSink,
) *DeadlineProcessor {
	return &DeadlineProcessor{
		repo:      repo,
		deadlines: deadlines,
		workflow:  workflow,
		sink:      sink,
	}
}

// ProcessAll checks every active proposal against its organization's rules,
// sends due reminders and performs due automatic transitions. The returned
// report carries per-proposal errors; only a failure to list the proposals
// themselves aborts the run.
func (p *DeadlineProcessor) ProcessAll(ctx context.Context) (*models.DeadlineProcessingReport, error) {
	report := &models.DeadlineProcessingReport{
		ProcessedAt: time.Now(),
		Errors:      []models.DeadlineProcessingError{},
	}

	proposals, err := p.repo.ListActiveProposals(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list active proposals: %w", err)
	}

	rulesByOrg := make(map[uint][]models.DeadlineRule)

	for _, proposal := range proposals {
		report.ProposalsChecked++

		rules, ok := rulesByOrg[proposal.OrganizationID]
		if !ok {
			rules, err = p.repo.GetDeadlineRules(ctx, proposal.OrganizationID)
			if err != nil {
				report.Errors = append(report.Errors, models.DeadlineProcessingError{
					ProposalID: proposal.ID,
					Error:      err.Error(),
					Type:       "check",
				})
				continue
			}
			rulesByOrg[proposal.OrganizationID] = rules
		}

		anchor, err := p.statusAnchor(ctx, proposal)
		if err != nil {
			report.Errors = append(report.Errors, models.DeadlineProcessingError{
				ProposalID: proposal.ID,
				Error:      err.Error(),
				Type:       "check",
			})
			continue
		}

		result := p.deadlines.CheckDeadline(proposal, anchor, rules)
		if result == nil {
			continue
		}

		if result.ShouldNotify {
			if err := p.notifyDeadline(ctx, proposal, result); err != nil {
				report.Errors = append(report.Errors, models.DeadlineProcessingError{
					ProposalID: proposal.ID,
					Error:      err.Error(),
					Type:       "notification",
				})
			} else {
				report.NotificationsSent++
			}
		}

		if result.ShouldTransition {
			if err := p.autoTransition(ctx, proposal, result); err != nil {
				report.Errors = append(report.Errors, models.DeadlineProcessingError{
					ProposalID: proposal.ID,
					Error:      err.Error(),
					Type:       "transition",
				})
			} else {
				report.TransitionsPerformed++
			}
		}
	}

	return report, nil
}

// statusAnchor returns the timestamp deadline windows are measured from:
// the latest history entry when one exists, else the proposal's own
// status-changed timestamp.
func (p *DeadlineProcessor) statusAnchor(ctx context.Context, proposal *models.Proposal) (time.Time, error) {
	latest, err := p.repo.LatestStatusHistory(ctx, proposal.ID)
	if err != nil {
		return time.Time{}, err
	}
	if latest != nil {
		return latest.ChangedAt, nil
	}
	if !proposal.StatusChangedAt.IsZero() {
		return proposal.StatusChangedAt, nil
	}
	return proposal.CreatedAt, nil
}

func (p *DeadlineProcessor) notifyDeadline(ctx context.Context, proposal *models.Proposal, result *models.DeadlineCheckResult) error {
	title := fmt.Sprintf("Deadline approaching for %q", proposal.Title)
	content := models.JSONB{
		"proposal_id":     proposal.ID.String(),
		"current_status":  string(result.CurrentStatus),
		"deadline_at":     result.DeadlineAt.Format(time.RFC3339),
		"hours_remaining": result.HoursRemaining,
		"rule_id":         result.ApplicableRule.ID.String(),
	}
	return p.sink.Send(ctx, proposal.OwnerID, models.NotificationTypeDeadlineReminder,
		priorityForHours(result.HoursRemaining), title, content)
}

func (p *DeadlineProcessor) autoTransition(ctx context.Context, proposal *models.Proposal, result *models.DeadlineCheckResult) error {
	rule := result.ApplicableRule
	_, _, err := p.workflow.Transition(ctx, TransitionRequest{
		ProposalID:       proposal.ID,
		FromStatus:       proposal.Status,
		ToStatus:         rule.ToStatus,
		Actor:            models.SystemActor(),
		Comment:          fmt.Sprintf("Deadline of %d hours exceeded", rule.DeadlineHours),
		TransitionReason: models.TransitionReasonDeadlineExceeded,
		Automatic:        true,
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Proposal %q was moved to %s automatically", proposal.Title, rule.ToStatus)
	content := models.JSONB{
		"proposal_id": proposal.ID.String(),
		"from_status": string(proposal.Status),
		"to_status":   string(rule.ToStatus),
		"rule_id":     rule.ID.String(),
	}
	if err := p.sink.Send(ctx, proposal.OwnerID, models.NotificationTypeAutoTransition,
		models.NotificationPriorityHigh, title, content); err != nil {
		// The transition already happened; a lost alert is not worth failing
		// the proposal for.
		log.Printf("[DeadlineProcessor] auto-transition alert failed for proposal %s: %v", proposal.ID, err)
	}
	return nil
}

func priorityForHours(hoursRemaining float64) string {
	switch {
	case hoursRemaining <= 6:
		return models.NotificationPriorityHigh
	case hoursRemaining <= 24:
		return models.NotificationPriorityNormal
	}
	return models.NotificationPriorityLow
}
