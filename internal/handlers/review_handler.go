package handlers

import (
	"net/http"

	"caredraft/internal/auth"
	"caredraft/internal/models"
	"caredraft/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// AssignReviewers replaces the pending reviewer set for a proposal
// POST /api/proposals/:id/reviewers
func (h *ReviewHandler) AssignReviewers(c *gin.Context) {
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

	var req models.AssignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments, err := h.reviews.AssignReviewers(c.Request.Context(), proposalID, req.ReviewerIDs, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// SubmitDecision records the actor's review decision on a proposal
// POST /api/proposals/:id/decision
func (h *ReviewHandler) SubmitDecision(c *gin.Context) {
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

	var req models.SubmitDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.reviews.SubmitDecision(c.Request.Context(), proposalID, actor, req.Decision, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
