package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
)

const attributeNotFound = "Attribute not found"

type AttributeHandler struct{ svc *service.AttributeService }

func NewAttributeHandler(svc *service.AttributeService) *AttributeHandler {
	return &AttributeHandler{svc: svc}
}

// GET /attribute-definitions
func (h *AttributeHandler) List(c *gin.Context) {
	defs, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err, attributeNotFound)
		return
	}
	c.JSON(http.StatusOK, defs)
}

// POST /attribute-definitions
func (h *AttributeHandler) Create(c *gin.Context) {
	var in model.AttributeDefinitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	d, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err, attributeNotFound)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PUT /attribute-definitions/:id
func (h *AttributeHandler) Update(c *gin.Context) {
	var in model.AttributeDefinitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	d, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err, attributeNotFound)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /attribute-definitions/:id
func (h *AttributeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, attributeNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
