package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"caredraft/internal/models"
)

func TestTransitionDraftToReview(t *testing.T) {
	db := setupTestDB(t, "workflow_draft_review")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)

	org := createTestOrg(t, db, false, false)
	owner := createTestUser(t, db, 10, models.RoleWriter, org.ID)
	proposal := createTestProposal(t, db, models.StatusDraft, owner.ID, org.ID, time.Now().Add(-time.Hour))

	updated, entry, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusDraft,
		ToStatus:   models.StatusReview,
		Actor:      actorFor(owner),
		Comment:    "ready for review",
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if updated.Status != models.StatusReview {
		t.Errorf("expected status review, got %s", updated.Status)
	}
	if entry == nil {
		t.Fatal("expected a history entry")
	}
	if entry.FromStatus != models.StatusDraft || entry.ToStatus != models.StatusReview {
		t.Errorf("unexpected history statuses: %s -> %s", entry.FromStatus, entry.ToStatus)
	}
	if entry.ChangedBy == nil || *entry.ChangedBy != owner.ID {
		t.Errorf("expected changed_by %d, got %v", owner.ID, entry.ChangedBy)
	}
	if entry.Automatic {
		t.Error("manual transition must not be marked automatic")
	}

	var stored models.Proposal
	if err := db.Where("id = ?", proposal.ID).First(&stored).Error; err != nil {
		t.Fatalf("failed to reload proposal: %v", err)
	}
	if stored.Status != models.StatusReview {
		t.Errorf("stored status not updated: %s", stored.Status)
	}
}

func TestTransitionConcurrentModification(t *testing.T) {
	db := setupTestDB(t, "workflow_concurrent")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)

	org := createTestOrg(t, db, false, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	proposal := createTestProposal(t, db, models.StatusDraft, manager.ID, org.ID, time.Now())

	_, _, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusDraft,
		ToStatus:   models.StatusReview,
		Actor:      actorFor(manager),
	})
	if err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	// Replay with the now-stale from-status: must fail, never double-apply
	_, _, err = workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusDraft,
		ToStatus:   models.StatusReview,
		Actor:      actorFor(manager),
	})
	if !errors.Is(err, models.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	var historyCount int64
	db.Model(&models.StatusHistoryEntry{}).Where("proposal_id = ?", proposal.ID).Count(&historyCount)
	if historyCount != 1 {
		t.Errorf("expected exactly one history entry, got %d", historyCount)
	}
}

func TestTransitionPermissionDeniedDoesNotMutate(t *testing.T) {
	db := setupTestDB(t, "workflow_denied")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)

	org := createTestOrg(t, db, false, false)
	owner := createTestUser(t, db, 10, models.RoleWriter, org.ID)
	other := createTestUser(t, db, 11, models.RoleWriter, org.ID)
	proposal := createTestProposal(t, db, models.StatusDraft, owner.ID, org.ID, time.Now())

	_, _, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusDraft,
		ToStatus:   models.StatusReview,
		Actor:      actorFor(other),
	})

	var permErr *models.PermissionDeniedError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}

	var stored models.Proposal
	db.Where("id = ?", proposal.ID).First(&stored)
	if stored.Status != models.StatusDraft {
		t.Errorf("denied transition must not mutate status, got %s", stored.Status)
	}

	var historyCount int64
	db.Model(&models.StatusHistoryEntry{}).Where("proposal_id = ?", proposal.ID).Count(&historyCount)
	if historyCount != 0 {
		t.Errorf("denied transition must not write history, got %d entries", historyCount)
	}
}

func TestTransitionRejectionRequiresComment(t *testing.T) {
	db := setupTestDB(t, "workflow_comment")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)

	org := createTestOrg(t, db, true, false)
	manager := createTestUser(t, db, 20, models.RoleManager, org.ID)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	_, _, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusReview,
		ToStatus:   models.StatusDraft,
		Actor:      actorFor(manager),
		Comment:    "   ",
	})

	var valErr *models.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Field != "comment" {
		t.Errorf("expected comment field error, got %q", valErr.Field)
	}

	var stored models.Proposal
	db.Where("id = ?", proposal.ID).First(&stored)
	if stored.Status != models.StatusReview {
		t.Errorf("validation failure must not mutate status, got %s", stored.Status)
	}

	var historyCount int64
	db.Model(&models.StatusHistoryEntry{}).Where("proposal_id = ?", proposal.ID).Count(&historyCount)
	if historyCount != 0 {
		t.Errorf("validation failure must not write history, got %d entries", historyCount)
	}

	// With a comment the same rejection goes through
	updated, _, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID: proposal.ID,
		FromStatus: models.StatusReview,
		ToStatus:   models.StatusDraft,
		Actor:      actorFor(manager),
		Comment:    "needs pricing rework",
	})
	if err != nil {
		t.Fatalf("rejection with comment failed: %v", err)
	}
	if updated.Status != models.StatusDraft {
		t.Errorf("expected draft, got %s", updated.Status)
	}
}

func TestTransitionSystemActor(t *testing.T) {
	db := setupTestDB(t, "workflow_system")
	repo := newTestRepo(db)
	workflow := NewWorkflowService(repo)

	org := createTestOrg(t, db, false, false)
	proposal := createTestProposal(t, db, models.StatusReview, 10, org.ID, time.Now())

	updated, entry, err := workflow.Transition(context.Background(), TransitionRequest{
		ProposalID:       proposal.ID,
		FromStatus:       models.StatusReview,
		ToStatus:         models.StatusDraft,
		Actor:            models.SystemActor(),
		Comment:          "Deadline of 72 hours exceeded",
		TransitionReason: models.TransitionReasonDeadlineExceeded,
		Automatic:        true,
	})
	if err != nil {
		t.Fatalf("system transition failed: %v", err)
	}
	if updated.Status != models.StatusDraft {
		t.Errorf("expected draft, got %s", updated.Status)
	}
	if entry.ChangedBy != nil {
		t.Errorf("system transitions must not be attributed to a user, got %v", *entry.ChangedBy)
	}
	if !entry.Automatic {
		t.Error("expected automatic flag on system transition")
	}
	if entry.TransitionReason != models.TransitionReasonDeadlineExceeded {
		t.Errorf("unexpected transition reason %q", entry.TransitionReason)
	}
}
