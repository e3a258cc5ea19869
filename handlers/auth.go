package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required,min=2,max=50"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6,max=72"`
	Role     models.UserRole `json:"role" binding:"omitempty,oneof=customer restaurant"`
	Phone    string          `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer or restaurant account and signs the caller in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.session(c, http.StatusCreated, "User registered successfully", user)
}

// Login authenticates and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.session(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) session(c *gin.Context, status int, message string, user *models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"user":    user,
		"token":   token,
	})
}

// Me returns the current user's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Auth.Me(c.Request.Context(), middleware.Actor(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
