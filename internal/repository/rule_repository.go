package repository

import (
	"context"

	"caredraft/internal/models"

	"github.com/google/uuid"
)

// GetDeadlineRules returns the active rule set for an organization, falling
// back to the built-in defaults when none are configured.
func (r *Repository) GetDeadlineRules(ctx context.Context, organizationID uint) ([]models.DeadlineRule, error) {
	var rules []models.DeadlineRule
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("from_status ASC, created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return models.DefaultDeadlineRules(), nil
	}
	return rules, nil
}

// CreateDeadlineRule stores an organization-specific rule
func (r *Repository) CreateDeadlineRule(ctx context.Context, rule *models.DeadlineRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

// DeleteDeadlineRule removes an organization-specific rule
func (r *Repository) DeleteDeadlineRule(ctx context.Context, ruleID uuid.UUID, organizationID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", ruleID, organizationID).
		Delete(&models.DeadlineRule{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
