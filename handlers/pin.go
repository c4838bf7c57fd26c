package handlers

import (
	"net/http"

	"pinaly/models"

	"github.com/gin-gonic/gin"
)

// Pointers so that 0 (equator, prime meridian) still passes "required"
type PinRequest struct {
	MinLat  *float64 `form:"min_lat" binding:"required"`
	MaxLat  *float64 `form:"max_lat" binding:"required"`
	MinLong *float64 `form:"min_lon" binding:"required"`
	MaxLong *float64 `form:"max_lon" binding:"required"`
}

// PinList returns map markers for all located images in the bounding box.
func PinList(c *gin.Context, user *models.User) {
	query := PinRequest{}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	pins, err := Images.Pins(user, *query.MinLat, *query.MaxLat, *query.MinLong, *query.MaxLong)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pins)
}
