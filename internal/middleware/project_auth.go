package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/models"
)

// RequireProjectAccess checks if the user is a member of the project
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid project ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking project existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Set(constants.ContextKeyMember, member)
		c.Next()
	}
}

// RequireProjectAdmin checks if the user holds the admin role on the project.
// Must run after RequireProjectAccess.
func RequireProjectAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(constants.ContextKeyMember)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Project access required",
			})
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.ProjectMember)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Invalid project member data",
			})
			c.Abort()
			return
		}

		if member.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only project admins can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireTaskAccess checks if the user has access to a task.
// User must be a member of the task's project.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid task ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Creator").
			Preload("Assignments").
			Preload("Assignments.User").
			First(&task, taskID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().
			Where("project_id = ? AND user_id = ?", task.ProjectID, userID).
			First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking task existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}
