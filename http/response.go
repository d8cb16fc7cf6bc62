package http

import "github.com/gin-gonic/gin"

// UpdateResponse is the JSON body of the /update endpoint: the combined
// status across address families and a human-readable summary.
type UpdateResponse struct {
	Status  string `json:"status"` // success, partial, or error
	Message string `json:"message"`
}

// Response is the JSON envelope for the system endpoints.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a 200 response with code 0 and the given data.
func OK(c *gin.Context, data any) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}
