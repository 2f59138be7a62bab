package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// TaskHandler mantiene dependencias para endpoints de tareas.
type TaskHandler struct {
	logger   *zap.Logger
	taskServ *service.TaskService
}

// NewTaskHandler crea una instancia de TaskHandler con dependencias necesarias.
func NewTaskHandler(logger *zap.Logger, taskServ *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger:   logger,
		taskServ: taskServ,
	}
}

// CreateTask maneja POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	var req struct {
		Description string `json:"description" binding:"required"`
		Completed   bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.taskServ.Create(c.Request.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDescription) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create task"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ListTasks maneja GET /tasks con filtros completed, limit, skip y sortBy.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	filter, err := parseTaskFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}

	tasks, err := h.taskServ.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		h.logger.Error("list tasks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tasks"})
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask maneja GET /tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	task, err := h.taskServ.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.Error("get task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTask maneja PATCH /tasks/:id con la allow-list de campos.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.logger.Warn("invalid update task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.taskServ.Update(c.Request.Context(), user.ID, c.Param("id"), updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		case errors.Is(err, service.ErrInvalidTaskUpdate), errors.Is(err, service.ErrInvalidDescription):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update(s)"})
			return
		default:
			h.logger.Error("update task failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update task"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask maneja DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	if err := h.taskServ.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.Error("delete task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete task"})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseTaskFilter(c *gin.Context) (repository.TaskFilter, error) {
	var filter repository.TaskFilter

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, err
		}
		filter.Completed = &completed
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return filter, errors.New("invalid skip")
		}
		filter.Skip = skip
	}
	if raw := c.Query("sortBy"); raw != "" {
		// Formato campo:direccion, ej: createdAt:desc
		parts := strings.SplitN(raw, ":", 2)
		switch parts[0] {
		case "createdAt", "created_at":
			filter.SortBy = "created_at"
		case "completed":
			filter.SortBy = "completed"
		default:
			return filter, errors.New("invalid sortBy")
		}
		if len(parts) == 2 {
			switch parts[1] {
			case "asc":
			case "desc":
				filter.SortDesc = true
			default:
				return filter, errors.New("invalid sortBy")
			}
		}
	}

	return filter, nil
}
