package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type ExportHandler struct {
	export services.ExportService
}

func NewExportHandler(export services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// GET /api/export/inventory.csv
//
// The document is buffered so a failed query still yields a JSON error.
func (h *ExportHandler) InventoryCSV(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.export.WriteInventoryCSV(c.Request.Context(), &buf); err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	name := fmt.Sprintf("inventory_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
