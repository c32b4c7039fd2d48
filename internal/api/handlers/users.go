package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/utils"
)

type UserHandler struct {
	users services.IUserService
}

func NewUserHandler(users services.IUserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register serves POST /auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	user, token, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login serves POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me serves GET /me.
func (h *UserHandler) Me(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, err := utils.ParseSixID(actor.ID)
	if err != nil {
		respondError(c, listing.ErrNotFound)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePreferences serves PATCH /me/preferences.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, err := utils.ParseSixID(actor.ID)
	if err != nil {
		respondError(c, listing.ErrNotFound)
		return
	}
	var prefs models.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	if err := h.users.UpdateNotificationPreferences(c.Request.Context(), id, prefs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
