package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	taskapp "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/interfaces/http/dto"
)

// TaskHandler handles the task catalog and the tasks attached to customers
type TaskHandler struct {
	BaseHandler
	tasks TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateDefinition handles POST /tasks
func (h *TaskHandler) CreateDefinition(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req taskapp.CreateTaskDefinitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.tasks.CreateDefinition(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// ListDefinitions handles GET /tasks
func (h *TaskHandler) ListDefinitions(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	defs, err := h.tasks.ListDefinitions(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, defs)
}

// GetDefinition handles GET /tasks/:id
func (h *TaskHandler) GetDefinition(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	def, err := h.tasks.GetDefinition(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}

// UpdateDefinition handles PUT /tasks/:id
func (h *TaskHandler) UpdateDefinition(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req taskapp.UpdateTaskDefinitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	def, err := h.tasks.UpdateDefinition(c.Request.Context(), tenantID, c.Param("id"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, def)
}

// ListForCustomer handles GET /customers/:id/tasks
func (h *TaskHandler) ListForCustomer(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	includeExecuted := false
	if raw := c.Query("includeExecuted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidInput), dto.ErrCodeInvalidInput, "includeExecuted must be a boolean")
			return
		}
		includeExecuted = v
	}

	tasks, err := h.tasks.ListTasksForCustomer(c.Request.Context(), tenantID, c.Param("id"), includeExecuted)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// AddToCustomer handles POST /customers/:id/tasks/:taskId
func (h *TaskHandler) AddToCustomer(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.tasks.AddTaskToCustomer(c.Request.Context(), tenantID, c.Param("id"), c.Param("taskId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// ExecuteForCustomer handles PUT /customers/:id/tasks/:taskId
func (h *TaskHandler) ExecuteForCustomer(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req taskapp.ExecuteTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.tasks.ExecuteTask(c.Request.Context(), tenantID, c.Param("id"), c.Param("taskId"), actor, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// RemoveFromCustomer handles DELETE /customers/:id/tasks/:taskId
func (h *TaskHandler) RemoveFromCustomer(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.tasks.RemoveTaskFromCustomer(c.Request.Context(), tenantID, c.Param("id"), c.Param("taskId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, nil)
}
