package handler

import (
	"net/http"

	"filevault/internal/services"
	"filevault/internal/transport/httpdto"
	apperrors "filevault/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req httpdto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.InvalidInput("invalid sign-up payload"))
		return
	}

	user, token, err := h.service.SignUp(c.Request.Context(), services.SignUpInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.AuthResponse{Token: token, User: user}))
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req httpdto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.InvalidInput("invalid sign-in payload"))
		return
	}

	token, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{Token: token}))
}
