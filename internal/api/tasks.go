package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/internal/relay"
)

// TaskHandler exposes saved-task endpoints
type TaskHandler struct {
	tasks *relay.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *relay.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Save handles POST /api/posts/:id/task
func (h *TaskHandler) Save(c *gin.Context) {
	task, err := h.tasks.SaveAsTask(c.Request.Context(), c.Param("id"), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// List handles GET /api/tasks?status=pending|completed
func (h *TaskHandler) List(c *gin.Context) {
	status := models.TaskStatus(c.Query("status"))
	switch status {
	case "", models.TaskStatusPending, models.TaskStatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	tasks, err := h.tasks.MyTasks(c.Request.Context(), CurrentUID(c), status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type completeInput struct {
	ActionID string `json:"actionId" binding:"required"`
}

// Complete handles POST /api/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	var in completeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.tasks.Complete(c.Request.Context(), c.Param("id"), CurrentUID(c), in.ActionID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": true})
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id"), CurrentUID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// IsSaved handles GET /api/posts/:id/task
func (h *TaskHandler) IsSaved(c *gin.Context) {
	saved, err := h.tasks.IsSaved(c.Request.Context(), c.Param("id"), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}
