package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

type MessageHandler struct {
	Service *service.MessageService
}

func (h *MessageHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/messages", h.Submit)
}

func (h *MessageHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/messages", h.List)
}

// POST /api/messages
func (h *MessageHandler) Submit(c *gin.Context) {
	var in service.MessageInput
	if !bindJSON(c, &in) {
		return
	}
	msg, err := h.Service.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GET /api/admin/messages
func (h *MessageHandler) List(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}
