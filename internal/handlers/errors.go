package handlers

import (
	"errors"
	"net/http"

	"caredraft/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps workflow errors onto HTTP statuses. Policy denials keep
// their human-readable reason so the client can render it.
func respondError(c *gin.Context, err error) {
	var permErr *models.PermissionDeniedError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": permErr.Reason})
		return
	}

	var valErr *models.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Message, "field": valErr.Field})
		return
	}

	switch {
	case errors.Is(err, models.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "proposal was updated elsewhere, please reload and retry"})
	case errors.Is(err, models.ErrProposalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
	case errors.Is(err, models.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending review assignment for this reviewer"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
