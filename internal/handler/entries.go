package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
)

const (
	entryNotFound = "Entry not found"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type EntryHandler struct {
	svc    *service.EntryService
	export *service.ExportService
}

func NewEntryHandler(svc *service.EntryService, export *service.ExportService) *EntryHandler {
	return &EntryHandler{svc: svc, export: export}
}

// GET /entries?visibility=public
func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Query("visibility"))
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, e)
}

// POST /entries
func (h *EntryHandler) Create(c *gin.Context) {
	var in model.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	e, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, model.EntryCreatedResponse{Entry: *e, Message: "Entry created successfully"})
}

// PUT /entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	var in model.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	e, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, e)
}

// PATCH /entries/:id/visibility  body: {"visibility":"public"}
func (h *EntryHandler) SetVisibility(c *gin.Context) {
	var req model.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	id := c.Param("id")
	if err := h.svc.SetVisibility(c.Request.Context(), id, req.Visibility); err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "visibility": req.Visibility})
}

// DELETE /entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// POST /entries/:id/notes  body: {"content":"..."}
func (h *EntryHandler) AddNote(c *gin.Context) {
	var req model.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	n, err := h.svc.AddNote(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	c.JSON(http.StatusOK, model.NoteResponse{Note: *n})
}

// GET /entries/export.xlsx?visibility=
func (h *EntryHandler) Export(c *gin.Context) {
	data, err := h.export.Workbook(c.Request.Context(), c.Query("visibility"))
	if err != nil {
		fail(c, err, entryNotFound)
		return
	}
	name := fmt.Sprintf("lifeof-entries-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}
