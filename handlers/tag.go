package handlers

import (
	"net/http"

	"pinaly/models"

	"github.com/gin-gonic/gin"
)

func TagList(c *gin.Context, user *models.User) {
	tags, err := Images.AllTags()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}
