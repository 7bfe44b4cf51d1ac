package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/report"
	"rentease-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	Service *service.ReportService
	Now     func() time.Time
}

func (h *ReportHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/reports/:kind", h.Download)
	rg.GET("/reports/:kind/fields", h.Fields)
}

// GET /api/admin/reports/:kind?start=2024-01-01&end=2024-01-31&fields=id,name&format=json
func (h *ReportHandler) Download(c *gin.Context) {
	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := h.now()
	start, end, err := report.ParseRange(c.Query("start"), c.Query("end"), now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err := h.Service.Generate(c.Request.Context(), middleware.ActorFrom(c), service.ReportRequest{
		Kind:   kind,
		Start:  start,
		End:    end,
		Fields: report.ParseFieldList(c.Query("fields")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{"fields": table.Fields, "rows": table.Rows})
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, table); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.Filename(now)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GET /api/admin/reports/:kind/fields
func (h *ReportHandler) Fields(c *gin.Context) {
	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report.Available(kind))
}

func (h *ReportHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
