package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"caredraft/internal/models"
)

func TestAssignReviewersReplacesPendingSet(t *testing.T) {
	db := setupTestDB(t, "review_assign")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	r1 := createTestUser(t, db, 31, models.RoleWriter, org.ID)
	r2 := createTestUser(t, db, 32, models.RoleWriter, org.ID)
	r3 := createTestUser(t, db, 33, models.RoleManager, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	first, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r1.ID, r2.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("AssignReviewers failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(first))
	}

	// Reassigning drops the pending set and installs the new one
	second, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r3.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("reassignment failed: %v", err)
	}
	if len(second) != 1 || second[0].ReviewerID != r3.ID {
		t.Fatalf("expected a single assignment for reviewer %d, got %+v", r3.ID, second)
	}

	var pendingCount int64
	db.Model(&models.ReviewerAssignment{}).
		Where("proposal_id = ? AND completed_at IS NULL", proposal.ID).
		Count(&pendingCount)
	if pendingCount != 1 {
		t.Errorf("expected 1 pending assignment after reassignment, got %d", pendingCount)
	}
}

func TestAssignReviewersValidation(t *testing.T) {
	db := setupTestDB(t, "review_assign_validation")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	otherOrg := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	writer := createTestUser(t, db, 30, models.RoleWriter, org.ID)
	outsider := createTestUser(t, db, 40, models.RoleWriter, otherOrg.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, err := reviews.AssignReviewers(context.Background(), proposal.ID, nil, actorFor(manager))
	var valErr *models.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError for empty reviewer list, got %v", err)
	}

	_, err = reviews.AssignReviewers(context.Background(), proposal.ID, []uint{outsider.ID}, actorFor(manager))
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError for cross-org reviewer, got %v", err)
	}

	_, err = reviews.AssignReviewers(context.Background(), proposal.ID, []uint{manager.ID}, actorFor(writer))
	var permErr *models.PermissionDeniedError
	if !errors.As(err, &permErr) {
		t.Errorf("expected PermissionDeniedError for writer assigning, got %v", err)
	}
}

func TestSubmitDecisionPendingUntilLastVote(t *testing.T) {
	db := setupTestDB(t, "review_pending")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	r1 := createTestUser(t, db, 31, models.RoleWriter, org.ID)
	r2 := createTestUser(t, db, 32, models.RoleWriter, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r1.ID, r2.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("AssignReviewers failed: %v", err)
	}

	outcome, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.DecisionApproved, "looks good")
	if err != nil {
		t.Fatalf("SubmitDecision failed: %v", err)
	}
	if !outcome.Pending {
		t.Error("expected pending outcome while a reviewer has not voted")
	}
	if outcome.Approvals != 1 {
		t.Errorf("expected 1 approval, got %d", outcome.Approvals)
	}

	var stored models.Proposal
	db.Where("id = ?", proposal.ID).First(&stored)
	if stored.Status != models.StatusReview {
		t.Errorf("proposal must stay in review while votes are pending, got %s", stored.Status)
	}
}

func TestSubmitDecisionUnanimousApproval(t *testing.T) {
	db := setupTestDB(t, "review_unanimous")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	r1 := createTestUser(t, db, 31, models.RoleWriter, org.ID)
	r2 := createTestUser(t, db, 32, models.RoleWriter, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r1.ID, r2.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("AssignReviewers failed: %v", err)
	}

	if _, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.DecisionApproved, ""); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	outcome, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r2), models.DecisionApproved, "")
	if err != nil {
		t.Fatalf("final vote failed: %v", err)
	}

	if outcome.Pending {
		t.Error("expected a resolved outcome")
	}
	if outcome.FinalStatus != models.StatusSubmitted {
		t.Errorf("expected submitted, got %s", outcome.FinalStatus)
	}
	if outcome.Proposal == nil || outcome.Proposal.Status != models.StatusSubmitted {
		t.Error("expected the proposal to be transitioned to submitted")
	}
	if outcome.History == nil {
		t.Fatal("expected a history entry for the final transition")
	}
	if outcome.History.TransitionReason != models.TransitionReasonReviewCompleted {
		t.Errorf("unexpected transition reason %q", outcome.History.TransitionReason)
	}
	if outcome.History.ChangedBy != nil {
		t.Error("review resolution runs as the system, not a user")
	}
}

func TestSubmitDecisionSingleVeto(t *testing.T) {
	db := setupTestDB(t, "review_veto")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	r1 := createTestUser(t, db, 31, models.RoleWriter, org.ID)
	r2 := createTestUser(t, db, 32, models.RoleWriter, org.ID)
	r3 := createTestUser(t, db, 33, models.RoleManager, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r1.ID, r2.ID, r3.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("AssignReviewers failed: %v", err)
	}

	if _, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.DecisionApproved, ""); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r2), models.DecisionRejected, "budget section incomplete"); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	outcome, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r3), models.DecisionApproved, "")
	if err != nil {
		t.Fatalf("final vote failed: %v", err)
	}

	if outcome.FinalStatus != models.StatusDraft {
		t.Errorf("one rejection must return the proposal to draft, got %s", outcome.FinalStatus)
	}
	if outcome.Approvals != 2 || outcome.Rejections != 1 {
		t.Errorf("unexpected tally: %d approvals, %d rejections", outcome.Approvals, outcome.Rejections)
	}

	var stored models.Proposal
	db.Where("id = ?", proposal.ID).First(&stored)
	if stored.Status != models.StatusDraft {
		t.Errorf("expected draft, got %s", stored.Status)
	}
}

func TestSubmitDecisionGuards(t *testing.T) {
	db := setupTestDB(t, "review_guards")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)
	reviews := NewReviewService(repo, workflow)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	r1 := createTestUser(t, db, 31, models.RoleWriter, org.ID)
	unassigned := createTestUser(t, db, 35, models.RoleWriter, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, err := reviews.AssignReviewers(context.Background(), proposal.ID, []uint{r1.ID}, actorFor(manager))
	if err != nil {
		t.Fatalf("AssignReviewers failed: %v", err)
	}

	_, err = reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.ReviewDecision("maybe"), "")
	var valErr *models.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError for invalid decision, got %v", err)
	}

	_, err = reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(unassigned), models.DecisionApproved, "")
	if !errors.Is(err, models.ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound for an unassigned reviewer, got %v", err)
	}

	// Voting twice: the first vote completes the assignment, the second has
	// nothing pending to complete
	if _, err := reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.DecisionApproved, ""); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	_, err = reviews.SubmitDecision(context.Background(), proposal.ID, actorFor(r1), models.DecisionRejected, "")
	if !errors.Is(err, models.ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound for a repeated vote, got %v", err)
	}
}
