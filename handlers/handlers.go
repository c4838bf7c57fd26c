package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pinaly/images"
	"pinaly/inference"
	"pinaly/logging"

	"github.com/gin-gonic/gin"
)

// Wired up in main before the router starts serving
var Images *images.Service

type Response struct {
	Error string `json:"error"`
}

// abortWithError maps service errors to HTTP statuses. Unexpected errors
// are logged here and returned opaque.
func abortWithError(c *gin.Context, err error) {
	var validation *images.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, Response{Error: validation.Reason})
	case errors.Is(err, images.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: "not found"})
	case errors.Is(err, inference.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, Response{Error: "location inference is unavailable"})
	default:
		logging.L.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, Response{Error: "internal error"})
	}
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
