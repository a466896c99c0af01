package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/dto"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/repository"
	"github.com/soundcollective/collective-api/internal/utils"
	"gorm.io/gorm"
)

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.userRepo.FindByID(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns the community's user directory
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.userRepo.List(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	dtos := make([]dto.UserDTO, len(users))
	for i, user := range users {
		dtos[i] = dto.ToUserDTO(user)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CountUsers returns the total number of users
func (h *UserHandler) CountUsers(c *gin.Context) {
	count, err := h.userRepo.Count()
	if err != nil {
		apierrors.InternalError(c, "Failed to count users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListNotifications returns the viewer's notifications, newest first
func (h *UserHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.userRepo.ListNotifications(userID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MarkNotificationRead marks one of the viewer's notifications as read
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userRepo.MarkNotificationRead(notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Notification not found")
			return
		}
		apierrors.InternalError(c, "Failed to update notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks all of the viewer's notifications as read
func (h *UserHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.userRepo.MarkAllNotificationsRead(userID); err != nil {
		apierrors.InternalError(c, "Failed to update notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
