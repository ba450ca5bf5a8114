// Analytics HTTP handlers.
//
// Dashboard figures, computed on demand:
//   - GET /stats      (headline counters + intent breakdown)
//   - GET /analytics  (14-day report: daily volume, intents, escalations)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats handles GET /stats.
func (h *Handlers) GetStats(c *gin.Context) {
	overview, err := h.statsSvc.GetOverview(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute stats")
		return
	}
	ok(c, http.StatusOK, overview)
}

// GetAnalytics handles GET /analytics.
func (h *Handlers) GetAnalytics(c *gin.Context) {
	report, err := h.statsSvc.GetReport(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute analytics")
		return
	}
	ok(c, http.StatusOK, report)
}
