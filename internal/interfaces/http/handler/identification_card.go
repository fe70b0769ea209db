package handler

import (
	"github.com/gin-gonic/gin"
	customerapp "github.com/microfinance/backend/internal/application/customer"
)

// IdentificationCardHandler handles /customers/:id/identifications
type IdentificationCardHandler struct {
	BaseHandler
	cards IdentificationCardService
}

// NewIdentificationCardHandler creates a new IdentificationCardHandler
func NewIdentificationCardHandler(cards IdentificationCardService) *IdentificationCardHandler {
	return &IdentificationCardHandler{cards: cards}
}

// Create handles POST /customers/:id/identifications
func (h *IdentificationCardHandler) Create(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req customerapp.CreateIdentificationCardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.cards.Create(c.Request.Context(), tenantID, c.Param("id"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// List handles GET /customers/:id/identifications
func (h *IdentificationCardHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	cards, err := h.cards.List(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cards)
}

// Get handles GET /customers/:id/identifications/:number
func (h *IdentificationCardHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	card, err := h.cards.Get(c.Request.Context(), tenantID, c.Param("id"), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// Update handles PUT /customers/:id/identifications/:number
func (h *IdentificationCardHandler) Update(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req customerapp.UpdateIdentificationCardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	card, err := h.cards.Update(c.Request.Context(), tenantID, c.Param("id"), c.Param("number"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, card)
}

// Delete handles DELETE /customers/:id/identifications/:number
func (h *IdentificationCardHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.cards.Delete(c.Request.Context(), tenantID, c.Param("id"), c.Param("number")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, nil)
}
