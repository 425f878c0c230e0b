package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
)

type WhoopHandler struct{ svc *service.WhoopService }

func NewWhoopHandler(svc *service.WhoopService) *WhoopHandler { return &WhoopHandler{svc: svc} }

// GET /whoop/status
func (h *WhoopHandler) Status(c *gin.Context) {
	st, err := h.svc.Status(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /whoop/auth
func (h *WhoopHandler) Auth(c *gin.Context) {
	u, err := h.svc.AuthURL()
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, model.WhoopAuthURL{AuthURL: u})
}

// GET /whoop/auth/whoop/callback?code=&state=
func (h *WhoopHandler) Callback(c *gin.Context) {
	resp, err := h.svc.Callback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /whoop/data
func (h *WhoopHandler) Data(c *gin.Context) {
	data, err := h.svc.Data(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, data)
}

// GET /whoop/data/full
func (h *WhoopHandler) Full(c *gin.Context) {
	resp, err := h.svc.FullSync(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET|POST /whoop/sync/latest
func (h *WhoopHandler) SyncLatest(c *gin.Context) {
	resp, err := h.svc.SyncLatest(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}
