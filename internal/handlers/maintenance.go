package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/jobs"
)

type MaintenanceHandler struct {
	manager *jobs.Manager
}

func NewMaintenanceHandler(manager *jobs.Manager) *MaintenanceHandler {
	return &MaintenanceHandler{manager: manager}
}

// RunJob triggers one maintenance job by name. Guarded by RequireCronSecret.
func (h *MaintenanceHandler) RunJob(c *gin.Context) {
	name := c.Param("job")
	known, err := h.manager.Run(name)
	if !known {
		apierrors.NotFound(c, "Unknown job")
		return
	}
	if err != nil {
		apierrors.InternalError(c, "Job failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job completed", "job": name})
}
