package handlers

import (
	"net/http"

	"pinaly/auth"
	"pinaly/models"

	"github.com/gin-gonic/gin"
)

type UserCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
type UserInfo struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func UserRegister(c *gin.Context) {
	postReq := UserCreateRequest{}
	if err := c.ShouldBindJSON(&postReq); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	user, err := models.UserCreate(postReq.Name, postReq.Email, postReq.Password)
	if err != nil {
		c.JSON(http.StatusConflict, Response{Error: "email already registered"})
		return
	}
	c.JSON(http.StatusCreated, UserInfo{ID: user.ID, Name: user.Name, Email: user.Email})
}

func UserLogin(c *gin.Context) {
	postReq := UserLoginRequest{}
	if err := c.ShouldBindJSON(&postReq); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	user, ok := models.UserLogin(postReq.Email, postReq.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Error: "invalid credentials"})
		return
	}
	token, err := auth.CreateToken(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func UserStatus(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, UserInfo{ID: user.ID, Name: user.Name, Email: user.Email})
}
