// Escalation HTTP handlers.
//
// The human-handoff queue for operators:
//   - GET   /escalations             (recent escalations)
//   - PATCH /escalations/:id/status  (assign / resolve / expire)
//
// Resolving or expiring an escalation clears the customer's lock, so the AI
// answers their next message again.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuwex/whatsapp-ai-backend/internal/services"
	"github.com/kuwex/whatsapp-ai-backend/internal/utils"
)

// EscalationStatusRequest is the JSON payload for a status transition.
type EscalationStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AssignedTo string `json:"assigned_to"`
}

// ListEscalations handles GET /escalations.
func (h *Handlers) ListEscalations(c *gin.Context) {
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultListLimit), defaultListLimit, maxListLimit)

	escalations, err := h.escSvc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list escalations")
		return
	}
	ok(c, http.StatusOK, gin.H{"escalations": escalations})
}

// UpdateEscalationStatus handles PATCH /escalations/:id/status.
func (h *Handlers) UpdateEscalationStatus(c *gin.Context) {
	var req EscalationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must include 'status'")
		return
	}

	esc, err := h.escSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.AssignedTo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEscalationStatus):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrEscalationNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "escalation not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "could not update escalation")
		}
		return
	}
	ok(c, http.StatusOK, esc)
}
