package handlers

import (
	"net/http"

	"caredraft/internal/auth"
	"caredraft/internal/models"
	"caredraft/internal/repository"
	"caredraft/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProposalHandler struct {
	repo     *repository.Repository
	workflow *services.WorkflowService
}

func NewProposalHandler(repo *repository.Repository, workflow *services.WorkflowService) *ProposalHandler {
	return &ProposalHandler{
		repo:     repo,
		workflow: workflow,
	}
}

// CreateProposal creates a new draft proposal
// POST /api/proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal := &models.Proposal{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		EstimatedValue: decimal.NewFromFloat(req.EstimatedValue),
		Status:         models.StatusDraft,
		OwnerID:        actor.UserID,
		OrganizationID: actor.OrganizationID,
	}
	if err := h.repo.CreateProposal(c.Request.Context(), proposal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create proposal"})
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// GetProposals lists active proposals for the actor's organization
// GET /api/proposals
func (h *ProposalHandler) GetProposals(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposals, err := h.repo.ListActiveProposals(c.Request.Context(), actor.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list proposals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// GetProposal retrieves one proposal, scoped to the actor's organization
// GET /api/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.repo.GetOrganizationProposal(c.Request.Context(), proposalID, actor.OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// TransitionProposal performs a manual status transition
// POST /api/proposals/:id/transition
func (h *ProposalHandler) TransitionProposal(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, entry, err := h.workflow.Transition(c.Request.Context(), services.TransitionRequest{
		ProposalID:       proposalID,
		FromStatus:       req.FromStatus,
		ToStatus:         req.ToStatus,
		Actor:            actor,
		Comment:          req.Comment,
		TransitionReason: req.TransitionReason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransitionResponse{
		Proposal: proposal,
		History:  entry,
	})
}

// GetHistory retrieves a proposal's status history, newest first
// GET /api/proposals/:id/history
func (h *ProposalHandler) GetHistory(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	// Scope check before exposing history
	if _, err := h.repo.GetOrganizationProposal(c.Request.Context(), proposalID, actor.OrganizationID); err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.repo.ListStatusHistory(c.Request.Context(), proposalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"total":   len(entries),
	})
}
