package handlers

import (
	"net/http"

	"pinaly/models"

	"github.com/gin-gonic/gin"
)

type ConfirmRequest struct {
	CandidateID uint64 `json:"candidate_id" binding:"required"`
}

type ManualLocationRequest struct {
	GpsLat  *float64 `json:"latitude" binding:"required"`
	GpsLong *float64 `json:"longitude" binding:"required"`
	Geoname *string  `json:"geoname"`
}

func ImageAnalyze(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	candidates, err := Images.Analyze(c.Request.Context(), user, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func ImageReanalyze(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	candidates, err := Images.Reanalyze(c.Request.Context(), user, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func ImageCandidates(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	candidates, err := Images.ListCandidates(user, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func ImageConfirm(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	postReq := ConfirmRequest{}
	if err := c.ShouldBindJSON(&postReq); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	detail, err := Images.Confirm(user, id, postReq.CandidateID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func ImageSetLocation(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	postReq := ManualLocationRequest{}
	if err := c.ShouldBindJSON(&postReq); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	detail, err := Images.SetManualLocation(user, id, *postReq.GpsLat, *postReq.GpsLong, postReq.Geoname)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
