package handlers

import (
	"net/http"

	"caredraft/internal/auth"
	"caredraft/internal/models"
	"caredraft/internal/repository"
	"caredraft/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DeadlineHandler struct {
	repo      *repository.Repository
	processor *services.DeadlineProcessor
}

func NewDeadlineHandler(repo *repository.Repository, processor *services.DeadlineProcessor) *DeadlineHandler {
	return &DeadlineHandler{
		repo:      repo,
		processor: processor,
	}
}

// GetRules lists the effective deadline rules for the actor's organization
// GET /api/admin/deadline-rules
func (h *DeadlineHandler) GetRules(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rules, err := h.repo.GetDeadlineRules(c.Request.Context(), actor.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deadline rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"total": len(rules),
	})
}

// CreateRule stores an organization-specific deadline rule
// POST /api/admin/deadline-rules
func (h *DeadlineHandler) CreateRule(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateDeadlineRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.FromStatus.Valid() || !req.ToStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal status in rule"})
		return
	}

	rule := &models.DeadlineRule{
		ID:                uuid.New(),
		OrganizationID:    actor.OrganizationID,
		FromStatus:        req.FromStatus,
		ToStatus:          req.ToStatus,
		DeadlineHours:     req.DeadlineHours,
		NotificationHours: models.IntList(req.NotificationHours),
		AutoTransition:    req.AutoTransition,
		RequiresApproval:  req.RequiresApproval,
		Description:       req.Description,
	}
	if err := h.repo.CreateDeadlineRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create deadline rule"})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// DeleteRule removes an organization-specific deadline rule
// DELETE /api/admin/deadline-rules/:id
func (h *DeadlineHandler) DeleteRule(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	deleted, err := h.repo.DeleteDeadlineRule(c.Request.Context(), ruleID, actor.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete deadline rule"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "deadline rule not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RunNow triggers one batch deadline run and returns its report
// POST /api/admin/deadlines/run
func (h *DeadlineHandler) RunNow(c *gin.Context) {
	report, err := h.processor.ProcessAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deadline run failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}
