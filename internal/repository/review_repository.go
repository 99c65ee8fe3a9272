package repository

import (
	"context"
	"errors"
	"time"

	"caredraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReplacePendingAssignments deletes all pending assignments for a proposal
// and creates a fresh set for the given reviewers. Completed assignments
// from earlier rounds are left untouched as historical record.
func (r *Repository) ReplacePendingAssignments(
	ctx context.Context,
	proposalID uuid.UUID,
	reviewerIDs []uint,
	assignedBy uint,
) ([]*models.ReviewerAssignment, error) {
	now := time.Now()
	assignments := make([]*models.ReviewerAssignment, 0, len(reviewerIDs))
	for _, reviewerID := range reviewerIDs {
		assignments = append(assignments, &models.ReviewerAssignment{
			ID:         uuid.New(),
			ProposalID: proposalID,
			ReviewerID: reviewerID,
			AssignedBy: assignedBy,
			AssignedAt: now,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("proposal_id = ? AND completed_at IS NULL", proposalID).
			Delete(&models.ReviewerAssignment{}).Error; err != nil {
			return err
		}
		return tx.Create(&assignments).Error
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetPendingAssignment retrieves the pending assignment for a reviewer on a
// proposal
func (r *Repository) GetPendingAssignment(ctx context.Context, proposalID uuid.UUID, reviewerID uint) (*models.ReviewerAssignment, error) {
	var assignment models.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND reviewer_id = ? AND completed_at IS NULL", proposalID, reviewerID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CompleteAssignment records a reviewer's decision on a pending assignment.
// The completed_at guard keeps an assignment from being completed twice.
func (r *Repository) CompleteAssignment(
	ctx context.Context,
	assignmentID uuid.UUID,
	decision models.ReviewDecision,
	comments string,
	completedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewerAssignment{}).
		Where("id = ? AND completed_at IS NULL", assignmentID).
		Updates(map[string]interface{}{
			"completed_at":    completedAt,
			"decision":        decision,
			"review_comments": comments,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListAssignments retrieves all assignments for a proposal
func (r *Repository) ListAssignments(ctx context.Context, proposalID uuid.UUID) ([]*models.ReviewerAssignment, error) {
	var assignments []*models.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
