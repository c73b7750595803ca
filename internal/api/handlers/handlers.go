// Package handlers implements the gin handlers behind the /api routes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FahadBinHussain/Xenovate/internal/buildinfo"
	"github.com/FahadBinHussain/Xenovate/internal/service"
)

// Handler serves every route from one runtime.
type Handler struct {
	rt *service.Runtime
}

// New returns handlers bound to rt.
func New(rt *service.Runtime) *Handler {
	return &Handler{rt: rt}
}

// respondError writes the {"error": msg} envelope.
func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Health reports liveness and the build version.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}
