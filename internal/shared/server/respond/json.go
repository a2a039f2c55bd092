package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON serializes body with the given status code.
func JSON(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

// OK is shorthand for a 200 JSON response.
func OK(c *gin.Context, body interface{}) {
	JSON(c, http.StatusOK, body)
}
