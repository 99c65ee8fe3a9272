package repository

import (
	"context"
	"errors"

	"caredraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppendStatusHistory appends an audit record. History is append-only;
// nothing ever updates or deletes these rows.
func (r *Repository) AppendStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// LatestStatusHistory retrieves the most recent history entry for a
// proposal, or nil when none exists yet.
func (r *Repository) LatestStatusHistory(ctx context.Context, proposalID uuid.UUID) (*models.StatusHistoryEntry, error) {
	var entry models.StatusHistoryEntry
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("changed_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListStatusHistory retrieves the full history for a proposal, newest first
func (r *Repository) ListStatusHistory(ctx context.Context, proposalID uuid.UUID) ([]*models.StatusHistoryEntry, error) {
	var entries []*models.StatusHistoryEntry
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
