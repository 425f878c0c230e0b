package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/service"
)

type ChartHandler struct{ svc *service.ChartService }

func NewChartHandler(svc *service.ChartService) *ChartHandler { return &ChartHandler{svc: svc} }

// GET /charts/overview?range=30d  (no range means all history)
func (h *ChartHandler) Overview(c *gin.Context) {
	r, err := lifelog.ParseRange(c.DefaultQuery("range", "all"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	ov, err := h.svc.Overview(c.Request.Context(), r)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ov)
}
