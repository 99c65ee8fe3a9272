package repository

import (
	"context"

	"caredraft/internal/models"
)

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrganizationByID retrieves an organization by ID
func (r *Repository) GetOrganizationByID(ctx context.Context, organizationID uint) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Where("id = ?", organizationID).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CountUsersInOrganization counts how many of the given user ids belong to
// the organization
func (r *Repository) CountUsersInOrganization(ctx context.Context, userIDs []uint, organizationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ? AND organization_id = ?", userIDs, organizationID).
		Count(&count).Error
	return count, err
}
