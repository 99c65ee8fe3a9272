package repository

import (
	"context"
	"errors"
	"time"

	"caredraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProposal creates a new proposal
func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	if proposal.StatusChangedAt.IsZero() {
		proposal.StatusChangedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposalByID retrieves a proposal by ID
func (r *Repository) GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetOrganizationProposal retrieves a proposal scoped to an organization
func (r *Repository) GetOrganizationProposal(ctx context.Context, proposalID uuid.UUID, organizationID uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", proposalID, organizationID).
		First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// UpdateProposalStatus performs the conditional status write. It updates the
// row only while its status still matches expected, and reports whether the
// write won the race. This is the sole mutation path for proposal status.
func (r *Repository) UpdateProposalStatus(
	ctx context.Context,
	proposalID uuid.UUID,
	expected models.ProposalStatus,
	next models.ProposalStatus,
	changedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, expected).
		Updates(map[string]interface{}{
			"status":            next,
			"status_changed_at": changedAt,
			"updated_at":        changedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListActiveProposals retrieves all non-archived proposals, optionally
// scoped to one organization (zero means all organizations, for the batch
// processor).
func (r *Repository) ListActiveProposals(ctx context.Context, organizationID uint) ([]*models.Proposal, error) {
	query := r.db.WithContext(ctx).Where("status != ?", models.StatusArchived)
	if organizationID != 0 {
		query = query.Where("organization_id = ?", organizationID)
	}

	var proposals []*models.Proposal
	err := query.Order("created_at DESC").Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}
