package handler

import (
	"github.com/gin-gonic/gin"
	customerapp "github.com/microfinance/backend/internal/application/customer"
)

// CustomerHandler handles the customer endpoints, lifecycle commands included
type CustomerHandler struct {
	BaseHandler
	customers CustomerService
	lifecycle LifecycleService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers CustomerService, lifecycle LifecycleService) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		lifecycle: lifecycle,
	}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req customerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.customers.Create(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.customers.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter customerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	customers, total, err := h.customers.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.PageIndex, filter.Size)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req customerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.customers.Update(c.Request.Context(), tenantID, c.Param("id"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// ExecuteCommand handles POST /customers/:id/commands
func (h *CustomerHandler) ExecuteCommand(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req customerapp.ExecuteCommandRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycle.ExecuteCommand(c.Request.Context(), tenantID, c.Param("id"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, result)
}

// ListCommands handles GET /customers/:id/commands
func (h *CustomerHandler) ListCommands(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	commands, err := h.lifecycle.ListCommands(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commands)
}

// AvailableActions handles GET /customers/:id/actions
func (h *CustomerHandler) AvailableActions(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	identifier := c.Param("id")
	actions, err := h.lifecycle.AvailableActions(c.Request.Context(), tenantID, identifier)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AvailableActionsData{Identifier: identifier, Actions: actions})
}
