package services

import (
	"fmt"
	"testing"
	"time"

	"caredraft/internal/models"
	"caredraft/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a named in-memory database. Each test uses its own name
// so parallel connections from gorm's pool share the same database without
// leaking state between tests.
func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Proposal{},
		&models.StatusHistoryEntry{},
		&models.ReviewerAssignment{},
		&models.DeadlineRule{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestOrg(t *testing.T, db *gorm.DB, requireCommentOnRejection, requireCommentOnApproval bool) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name:                      "Test Care Group",
		RequireCommentOnRejection: requireCommentOnRejection,
		RequireCommentOnApproval:  requireCommentOnApproval,
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create organization: %v", err)
	}
	return org
}

func createTestUser(t *testing.T, db *gorm.DB, id uint, role models.Role, orgID uint) *models.User {
	t.Helper()

	user := &models.User{
		ID:             id,
		Email:          fmt.Sprintf("user%d@example.com", id),
		FullName:       fmt.Sprintf("User %d", id),
		Role:           role,
		OrganizationID: orgID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestProposal(t *testing.T, db *gorm.DB, status models.ProposalStatus, ownerID, orgID uint, statusChangedAt time.Time) *models.Proposal {
	t.Helper()

	proposal := &models.Proposal{
		ID:              uuid.New(),
		Title:           "Community Nursing Tender",
		Status:          status,
		OwnerID:         ownerID,
		OrganizationID:  orgID,
		StatusChangedAt: statusChangedAt,
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	return proposal
}

func actorFor(user *models.User) models.Actor {
	return models.Actor{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}
}

func newTestRepo(db *gorm.DB) *repository.Repository {
	return repository.NewRepository(db)
}
