package auth

import (
	"net/http"
	"strings"

	"pinaly/db"
	"pinaly/models"

	"github.com/gin-gonic/gin"
)

// User is authenticated and loaded from the DB
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper class that adds bearer token checks + User pre-loading
type Router struct {
	Base *gin.Engine
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		return
	}
	handler(c, user)
}

// CurrentUser resolves the Authorization header to a User row, nil if the
// token is missing, invalid, expired or the user is gone.
func CurrentUser(c *gin.Context) *models.User {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil
	}
	userID, err := VerifyToken(token)
	if err != nil {
		return nil
	}
	var user models.User
	if db.Instance.First(&user, userID).Error != nil {
		return nil
	}
	return &user
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) PUT(path string, handler HandlerFunc) {
	cr.Base.PUT(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) DELETE(path string, handler HandlerFunc) {
	cr.Base.DELETE(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}
