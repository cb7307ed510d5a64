package http

import (
	"errors"
	"net/http"

	"paystream/internal/core/domain"
	"paystream/internal/core/services"
	apperrors "paystream/pkg/errors"
	"paystream/pkg/utils"
	"paystream/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Address  string `json:"address" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	username := utils.NormalizeUsername(utils.SanitizeString(req.Username))

	if err := validation.ValidateUsername(username); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	if err := validation.ValidateAddress(req.Address); err != nil {
		c.Error(apperrors.NewInvalidInput("address: " + err.Error()))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), username, req.Password, req.Address)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			c.Error(apperrors.New(apperrors.ErrCodeInvalidInput, apperrors.CategoryValidation, "username or address already taken", http.StatusConflict))
			return
		}
		c.Error(apperrors.NewInternal(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"address":  user.Address,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), utils.NormalizeUsername(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredential) {
			c.Error(apperrors.New(apperrors.ErrCodeUnauthorized, apperrors.CategoryAuth, "invalid credentials", http.StatusUnauthorized))
			return
		}
		c.Error(apperrors.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
