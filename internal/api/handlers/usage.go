package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

const (
	defaultUsageDays = 7
	maxUsageDays     = 365
)

// Usage handles GET /api/usage?days=N.
func (h *Handler) Usage(c *gin.Context) {
	days := defaultUsageDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxUsageDays {
			respondError(c, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}
	since := time.Now().AddDate(0, 0, -days)

	snap, err := h.rt.Usage.Snapshot(c.Request.Context(), since)
	if err != nil {
		log.WithError(err).Error("usage query failed")
		respondError(c, http.StatusInternalServerError, "Failed to query usage")
		return
	}
	c.JSON(http.StatusOK, snap)
}
