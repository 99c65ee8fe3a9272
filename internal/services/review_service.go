package services

import (
	"context"
	"fmt"
	"time"

	"caredraft/internal/models"
	"caredraft/internal/repository"

	"github.com/google/uuid"
)

// ReviewService tracks reviewer assignments and resolves the collective
// decision once every assigned reviewer has responded.
type ReviewService struct {
	repo     *repository.Repository
	workflow *WorkflowService
}

func NewReviewService(repo *repository.Repository, workflow *WorkflowService) *ReviewService {
	return &ReviewService{
		repo:     repo,
		workflow: workflow,
	}
}

// AssignReviewers replaces all pending assignments for the proposal with a
// fresh set for the given reviewers. Completed assignments from earlier
// rounds stay untouched.
func (s *ReviewService) AssignReviewers(
	ctx context.Context,
	proposalID uuid.UUID,
	reviewerIDs []uint,
	assignedBy models.Actor,
) ([]*models.ReviewerAssignment, error) {
	if len(reviewerIDs) == 0 {
		return nil, &models.ValidationError{Field: "reviewer_ids", Message: "at least one reviewer is required"}
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !assignedBy.System {
		if assignedBy.OrganizationID != proposal.OrganizationID {
			return nil, &models.PermissionDeniedError{Reason: "cross-organization access"}
		}
		if assignedBy.Role != models.RoleAdmin && assignedBy.Role != models.RoleManager {
			return nil, &models.PermissionDeniedError{Reason: "only admins or managers can assign reviewers"}
		}
	}

	count, err := s.repo.CountUsersInOrganization(ctx, reviewerIDs, proposal.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify reviewers: %w", err)
	}
	if count != int64(len(reviewerIDs)) {
		return nil, &models.ValidationError{
			Field:   "reviewer_ids",
			Message: "all reviewers must belong to the proposal's organization",
		}
	}

	return s.repo.ReplacePendingAssignments(ctx, proposalID, reviewerIDs, assignedBy.UserID)
}

// SubmitDecision records one reviewer's vote. While other assignments remain
// pending it returns a pending outcome; the final vote resolves the
// collective decision with single-veto semantics (one rejection returns the
// proposal to draft, unanimous approval submits it) and performs that
// transition through the workflow service.
func (s *ReviewService) SubmitDecision(
	ctx context.Context,
	proposalID uuid.UUID,
	reviewer models.Actor,
	decision models.ReviewDecision,
	comments string,
) (*models.ReviewOutcome, error) {
	if !decision.Valid() {
		return nil, &models.ValidationError{
			Field:   "decision",
			Message: "decision must be either 'approved' or 'rejected'",
		}
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !reviewer.System && reviewer.OrganizationID != proposal.OrganizationID {
		return nil, &models.PermissionDeniedError{Reason: "cross-organization access"}
	}

	assignment, err := s.repo.GetPendingAssignment(ctx, proposalID, reviewer.UserID)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.CompleteAssignment(ctx, assignment.ID, decision, comments, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}
	if !completed {
		return nil, models.ErrAssignmentNotFound
	}

	assignments, err := s.repo.ListAssignments(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	outcome := &models.ReviewOutcome{}
	for _, a := range assignments {
		if a.CompletedAt == nil {
			outcome.Pending = true
			continue
		}
		if a.Decision != nil && *a.Decision == models.DecisionRejected {
			outcome.Rejections++
		} else {
			outcome.Approvals++
		}
	}
	if outcome.Pending {
		return outcome, nil
	}

	// Every completed assignment is either approved or rejected, so the two
	// branches below are exhaustive: any rejection vetoes, otherwise the
	// approval count equals the reviewer count.
	final := models.StatusSubmitted
	if outcome.Rejections > 0 {
		final = models.StatusDraft
	}
	outcome.FinalStatus = final

	summary := fmt.Sprintf("Review completed: %d approvals, %d rejections", outcome.Approvals, outcome.Rejections)
	updated, entry, err := s.workflow.Transition(ctx, TransitionRequest{
		ProposalID:       proposalID,
		FromStatus:       models.StatusReview,
		ToStatus:         final,
		Actor:            models.SystemActor(),
		Comment:          summary,
		TransitionReason: models.TransitionReasonReviewCompleted,
	})
	if err != nil {
		return nil, err
	}
	outcome.Proposal = updated
	outcome.History = entry

	return outcome, nil
}
