package handler

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

// PhotoHandler uploads listing images and serves stored files.
type PhotoHandler struct {
	Service *service.PropertyService
}

func (h *PhotoHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/files/:id", h.Download)
}

func (h *PhotoHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/image", h.Upload)
}

// POST /api/listings/:id/image (multipart, field "file")
func (h *PhotoHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	url, err := h.Service.UploadImage(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// GET /api/files/:id
func (h *PhotoHandler) Download(c *gin.Context) {
	rc, filename, err := h.Service.OpenFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", filename),
	})
}
