package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
)

// ModelsResponse is the GET /api/models body.
type ModelsResponse struct {
	Models        []provider.ModelStatus `json:"models"`
	DefaultModel  string                 `json:"defaultModel"`
	APIConfigured bool                   `json:"apiConfigured"`
	Probed        bool                   `json:"probed"`
}

// Models handles GET /api/models. With ?probe=true every candidate receives
// a short test generation; otherwise the cached state is reported.
func (h *Handler) Models(c *gin.Context) {
	if !h.rt.Config.CredentialConfigured() {
		respondError(c, http.StatusInternalServerError, operation.ErrNotConfigured.Error())
		return
	}

	probe, _ := strconv.ParseBool(c.Query("probe"))
	var (
		statuses []provider.ModelStatus
		err      error
	)
	if probe {
		statuses, err = h.rt.Invoker.Probe(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to check models")
			return
		}
	} else {
		statuses = h.rt.Invoker.Status()
	}

	c.JSON(http.StatusOK, ModelsResponse{
		Models:        statuses,
		DefaultModel:  defaultModel(statuses),
		APIConfigured: true,
		Probed:        probe,
	})
}

func defaultModel(statuses []provider.ModelStatus) string {
	for _, st := range statuses {
		if st.IsDefault {
			return st.Name
		}
	}
	return ""
}
