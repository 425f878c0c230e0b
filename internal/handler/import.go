package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/whoop"
)

// Import handles POST /whoop/import: a multipart "file" holding a full-sync
// dump, plus an optional "clear" form field that empties the tables first.
func (h *WhoopHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Upload a WHOOP dump as the file field")
		return
	}
	truncate, _ := strconv.ParseBool(c.DefaultPostForm("clear", "false"))
	logger.Info("whoop.import_upload", "file", file.Filename, "size", file.Size, "clear", truncate)

	tmp := filepath.Join(os.TempDir(), "whoop_import_"+uuid.NewString()+".json")
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		fail(c, err, "")
		return
	}
	defer os.Remove(tmp)

	dump, err := whoop.ReadDump(tmp)
	if err != nil {
		badRequest(c, "Dump is not valid JSON")
		return
	}
	summary, err := h.svc.Import(c.Request.Context(), dump, truncate)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, model.FullSyncResponse{Message: "WHOOP dump imported", Summary: summary})
}
