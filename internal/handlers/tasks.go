package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type filterError struct {
	field   string
	message string
}

func (e *filterError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

func parseTaskFilter(c *gin.Context) (services.TaskFilter, error) {
	var filter services.TaskFilter

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, &filterError{field: "completed", message: "must be a boolean"}
		}
		filter.Completed = &completed
	}

	filter.Title = c.Query("title")
	filter.Search = c.Query("search")
	filter.Ordering = c.Query("ordering")

	if raw := c.Query("created_after"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, &filterError{field: "created_after", message: "must be a date in YYYY-MM-DD format"}
		}
		filter.CreatedAfter = &parsed
	}

	if raw := c.Query("created_before"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, &filterError{field: "created_before", message: "must be a date in YYYY-MM-DD format"}
		}
		filter.CreatedBefore = &parsed
	}

	return filter, nil
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(c)
	if err != nil {
		var fe *filterError
		errors.As(err, &fe)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_filter",
			"message": fmt.Sprintf("Invalid value for %s: %s", fe.field, fe.message),
			"field":   fe.field,
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		handleTaskError(c, services.ErrPageNotFound)
		return
	}

	result, err := h.taskService.ListTasks(h.db, actor, filter, page)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var taskInput struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid task data",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.CreateTask(h.db, actor, services.TaskInput{
		Title:       taskInput.Title,
		Description: taskInput.Description,
		Completed:   taskInput.Completed,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, services.ErrTaskNotFound)
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, actor, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ReplaceTask handles PUT: the title is required and every mutable field is
// written, so omitted optional fields reset to their zero values.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, services.ErrTaskNotFound)
		return
	}

	var taskInput struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid task data",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, actor, id, services.TaskPatch{
		Title:       &taskInput.Title,
		Description: &taskInput.Description,
		Completed:   &taskInput.Completed,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PatchTask handles PATCH: only fields present in the body are touched.
func (h *TaskHandler) PatchTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, services.ErrTaskNotFound)
		return
	}

	var taskInput struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid task data",
			"details": err.Error(),
		})
		return
	}

	if taskInput.Title != nil && *taskInput.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Title cannot be empty",
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, actor, id, services.TaskPatch{
		Title:       taskInput.Title,
		Description: taskInput.Description,
		Completed:   taskInput.Completed,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, services.ErrTaskNotFound)
		return
	}

	if err := h.taskService.DeleteTask(h.db, actor, id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.taskService.GetTaskStats(h.db, actor)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task not found",
		})
	case errors.Is(err, services.ErrPageNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "page_not_found",
			"message": "Invalid page",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "task_request_failed",
			"message": "Failed to process task request",
		})
	}
}
