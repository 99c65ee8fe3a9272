package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"caredraft/internal/models"
	"caredraft/internal/repository"

	"github.com/google/uuid"
)

// TransitionRequest describes one status transition to perform
type TransitionRequest struct {
	ProposalID       uuid.UUID
	FromStatus       models.ProposalStatus
	ToStatus         models.ProposalStatus
	Actor            models.Actor
	Comment          string
	TransitionReason string
	Automatic        bool
}

// WorkflowService orchestrates status transitions: it gates them through the
// policy, performs the conditional status write and appends the audit
// record. It is the only write path for proposal status.
type WorkflowService struct {
	repo   *repository.Repository
	policy *TransitionPolicy
}

func NewWorkflowService(repo *repository.Repository) *WorkflowService {
	return &WorkflowService{
		repo:   repo,
		policy: NewTransitionPolicy(),
	}
}

// Transition performs a single gated status change.
//
// The proposal is re-read first; if its status no longer matches
// req.FromStatus the caller lost an optimistic-concurrency race and gets
// ErrConcurrentModification. The status write itself is conditional on the
// expected status, so a race that slips past the read also fails cleanly.
//
// If the history append fails after the status write succeeded, the
// transition still counts as successful: status correctness takes priority
// over the audit trail. The inconsistency is logged and the returned history
// entry is nil.
func (s *WorkflowService) Transition(ctx context.Context, req TransitionRequest) (*models.Proposal, *models.StatusHistoryEntry, error) {
	proposal, err := s.repo.GetProposalByID(ctx, req.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Status != req.FromStatus {
		return nil, nil, models.ErrConcurrentModification
	}

	decision := s.policy.CanTransition(proposal, req.FromStatus, req.ToStatus, req.Actor)
	if !decision.Allowed {
		return nil, nil, &models.PermissionDeniedError{Reason: decision.Reason}
	}

	org, err := s.repo.GetOrganizationByID(ctx, proposal.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load organization settings: %w", err)
	}
	if s.policy.CommentRequired(req.FromStatus, req.ToStatus, org) && strings.TrimSpace(req.Comment) == "" {
		return nil, nil, &models.ValidationError{
			Field:   "comment",
			Message: commentRequiredMessage(req.ToStatus),
		}
	}

	changedAt := time.Now()
	updated, err := s.repo.UpdateProposalStatus(ctx, proposal.ID, req.FromStatus, req.ToStatus, changedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update proposal status: %w", err)
	}
	if !updated {
		return nil, nil, models.ErrConcurrentModification
	}

	proposal.Status = req.ToStatus
	proposal.StatusChangedAt = changedAt
	proposal.UpdatedAt = changedAt

	entry := &models.StatusHistoryEntry{
		ID:               uuid.New(),
		ProposalID:       proposal.ID,
		FromStatus:       req.FromStatus,
		ToStatus:         req.ToStatus,
		ChangedBy:        req.Actor.ChangedByID(),
		Comment:          req.Comment,
		TransitionReason: req.TransitionReason,
		Automatic:        req.Automatic,
		ChangedAt:        changedAt,
	}
	if err := s.repo.AppendStatusHistory(ctx, entry); err != nil {
		// Status already changed; do not roll back for a missing audit row.
		log.Printf("[Workflow] history append failed for proposal %s (%s -> %s): %v",
			proposal.ID, req.FromStatus, req.ToStatus, err)
		return proposal, nil, nil
	}

	return proposal, entry, nil
}

func commentRequiredMessage(to models.ProposalStatus) string {
	if to == models.StatusDraft {
		return "Comments are required when rejecting a proposal"
	}
	return "Comments are required when approving a proposal"
}
