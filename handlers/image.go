package handlers

import (
	"io"
	"net/http"
	"strconv"

	"pinaly/config"
	"pinaly/images"
	"pinaly/models"

	"github.com/gin-gonic/gin"
)

func ImageCreate(c *gin.Context, user *models.User) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "missing file field"})
		return
	}
	if fileHeader.Size > int64(config.MAX_UPLOAD_MB)*1024*1024 {
		c.JSON(http.StatusRequestEntityTooLarge, Response{Error: "file too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	detail, err := Images.Create(user, images.CreateRequest{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func ImageList(c *gin.Context, user *models.User) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	result, err := Images.List(user, limit, offset)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func ImageDetail(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := Images.GetDetail(user, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func ImageUpdate(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	postReq := images.UpdateRequest{}
	if err := c.ShouldBindJSON(&postReq); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	detail, err := Images.Update(user, id, postReq)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func ImageDelete(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := Images.Delete(user, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImageFetch streams the blob (or thumbnail with ?thumb=1) through the
// storage backend; remote backends may answer with a presigned redirect.
func ImageFetch(c *gin.Context, user *models.User) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	store, path, mimeType, err := Images.Blob(user, id, c.Query("thumb") == "1")
	if err != nil {
		abortWithError(c, err)
		return
	}
	store.Serve(path, mimeType, c.Request, c.Writer)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
