package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FahadBinHussain/Xenovate/internal/json"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/service"
)

// MaxRequestBodyBytes caps the JSON body accepted by the code operations.
const MaxRequestBodyBytes = 2 << 20

const (
	msgInvalidBody    = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgInternalServer = "Internal server error"
)

// Analyze handles POST /api/analyze.
func (h *Handler) Analyze(c *gin.Context) { h.runOperation(c, operation.Analyze) }

// Optimize handles POST /api/optimize.
func (h *Handler) Optimize(c *gin.Context) { h.runOperation(c, operation.Optimize) }

// Convert handles POST /api/convert.
func (h *Handler) Convert(c *gin.Context) { h.runOperation(c, operation.Convert) }

// Explain handles POST /api/explain.
func (h *Handler) Explain(c *gin.Context) { h.runOperation(c, operation.Explain) }

// runOperation maps service outcomes to HTTP: 400 for a malformed request,
// 500 when no credential is configured, 503 when the upstream rejected it.
// Every other upstream failure still answers 200 with the degraded result.
func (h *Handler) runOperation(c *gin.Context, op operation.Operation) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	var req operation.CodeRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(c, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}

	result, err := h.rt.Service.Run(c.Request.Context(), op, req)
	if err != nil {
		var ve *operation.ValidationError
		switch {
		case errors.As(err, &ve):
			respondError(c, http.StatusBadRequest, ve.Error())
			return
		case errors.Is(err, operation.ErrNotConfigured):
			respondError(c, http.StatusInternalServerError, operation.ErrNotConfigured.Error())
			return
		case provider.IsCredentialError(err):
			respondError(c, http.StatusServiceUnavailable, service.MsgCredentialRejected)
			return
		case result == nil:
			log.WithError(err).Errorf("%s failed without a result", op)
			respondError(c, http.StatusInternalServerError, msgInternalServer)
			return
		}
	}
	c.JSON(http.StatusOK, result)
}
