package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

// maxWebhookBytes bounds the payment provider's event payload.
const maxWebhookBytes = int64(65536)

type InterestHandler struct {
	Service *service.InterestService
}

func (h *InterestHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.PaymentWebhook)
}

func (h *InterestHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/interests", h.Submit)
	rg.GET("/me/interests", h.GetMine)
	rg.GET("/me/listings/interests", h.GetForOwner)
	rg.POST("/interests/:id/payment", h.StartPayment)
}

func (h *InterestHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/interests", h.GetAll)
}

// POST /api/listings/:id/interests
func (h *InterestHandler) Submit(c *gin.Context) {
	var in service.InterestInput
	if !bindJSON(c, &in) {
		return
	}
	interest, err := h.Service.Submit(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interest)
}

// GET /api/me/interests
func (h *InterestHandler) GetMine(c *gin.Context) {
	list, err := h.Service.ListMine(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GET /api/me/listings/interests
func (h *InterestHandler) GetForOwner(c *gin.Context) {
	list, err := h.Service.ListForOwner(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GET /api/admin/interests
func (h *InterestHandler) GetAll(c *gin.Context) {
	list, err := h.Service.ListAll(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// POST /api/interests/:id/payment
func (h *InterestHandler) StartPayment(c *gin.Context) {
	start, err := h.Service.StartPayment(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, start)
}

// POST /api/payments/webhook
func (h *InterestHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}
	if err := h.Service.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
