package http

import (
	"github.com/gin-gonic/gin"

	"github.com/porkdyn/porkdyn/reconcile"
	"github.com/porkdyn/porkdyn/types"
)

// UpdateHandler handles the dynamic-DNS update endpoint.
type UpdateHandler struct {
	orchestrator *reconcile.Orchestrator
}

// NewUpdateHandler creates an UpdateHandler backed by the orchestrator.
func NewUpdateHandler(orch *reconcile.Orchestrator) *UpdateHandler {
	return &UpdateHandler{orchestrator: orch}
}

// Update handles GET /update. Parameters arrive as a flat query string
// so stock router firmware can call the endpoint: apikey, secretapikey,
// domain, and at least one of ip / ipv6.
func (h *UpdateHandler) Update(c *gin.Context) {
	req := reconcile.Request{
		APIKey:       c.Query("apikey"),
		SecretAPIKey: c.Query("secretapikey"),
		Domain:       c.Query("domain"),
		IP:           c.Query("ip"),
		IPv6:         c.Query("ipv6"),
	}

	result, err := h.orchestrator.Run(c.Request.Context(), req)
	if err != nil {
		// Validation failure: nothing was sent to the provider.
		c.JSON(400, UpdateResponse{Status: string(types.StatusError), Message: err.Error()})
		return
	}

	code := 200
	if result.Status == types.StatusError {
		code = 502
	}
	c.JSON(code, UpdateResponse{Status: string(result.Status), Message: result.Message})
}
