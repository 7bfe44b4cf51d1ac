package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

type SettingsHandler struct {
	Service *service.SettingsService
}

func (h *SettingsHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/fees/tiers", h.GetTiers)
}

func (h *SettingsHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/settings", h.GetSettings)
	rg.PUT("/settings", h.PutSettings)
}

// GET /api/fees/tiers
func (h *SettingsHandler) GetTiers(c *gin.Context) {
	tiers, err := h.Service.Tiers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

// GET /api/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	s, err := h.Service.Get(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// PUT /api/admin/settings
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	s, err := h.Service.PutDocument(c.Request.Context(), middleware.ActorFrom(c), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
