// Conversation HTTP handlers.
//
// Read-only dashboard views over chat history:
//   - GET /conversations                 (customers by recent activity)
//   - GET /conversations/:phone          (full history for one number)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuwex/whatsapp-ai-backend/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListConversations handles GET /conversations. The optional ?limit= query
// bounds the number of customers returned.
func (h *Handlers) ListConversations(c *gin.Context) {
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultListLimit), defaultListLimit, maxListLimit)

	customers, err := h.convSvc.ListCustomers(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list conversations")
		return
	}
	ok(c, http.StatusOK, gin.H{"customers": customers})
}

// GetConversation handles GET /conversations/:phone, returning every turn
// exchanged with that phone number in chronological order.
func (h *Handlers) GetConversation(c *gin.Context) {
	phone := c.Param("phone")
	if phone == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone number is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0) // 0 = unbounded

	turns, err := h.convSvc.History(c.Request.Context(), phone, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load conversation")
		return
	}
	ok(c, http.StatusOK, gin.H{"phone_number": phone, "messages": turns})
}
