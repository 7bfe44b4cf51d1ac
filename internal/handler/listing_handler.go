package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentease-service/internal/middleware"
	"rentease-service/internal/model"
	"rentease-service/internal/service"
)

// ListingHandler serves the property listing routes.
type ListingHandler struct {
	Service *service.PropertyService
}

// RegisterPublic registers the catalogue reads. They run behind OptionalAuth.
func (h *ListingHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/listings", h.GetApprovedListings)
	rg.GET("/listings/:id", h.GetListingByID)
}

func (h *ListingHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings", h.CreateListing)
	rg.PUT("/listings/:id", h.UpdateListing)
	rg.DELETE("/listings/:id", h.DeleteListing)
	rg.GET("/me/listings", h.GetMyListings)
}

func (h *ListingHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/listings", h.GetByStatus)
	rg.GET("/listings/pending", h.GetPending)
	rg.GET("/listings/video-requests", h.GetVideoRequests)
	rg.PUT("/listings/:id/approve", h.Approve)
	rg.PUT("/listings/:id/reject", h.Reject)
}

func queryDecimal(c *gin.Context, keys ...string) decimal.NullDecimal {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				return decimal.NewNullDecimal(d)
			}
		}
	}
	return decimal.NullDecimal{}
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

// GET /api/listings?city=...&type=...&q=...&min_price=...&max_price=...&bedrooms=...&limit=...&offset=...
func (h *ListingHandler) GetApprovedListings(c *gin.Context) {
	q := service.ListingQuery{
		City:         c.Query("city"),
		PropertyType: firstQuery(c, "type", "category"),
		Text:         firstQuery(c, "q", "search"),
		MinRent:      queryDecimal(c, "min_price", "minRent"),
		MaxRent:      queryDecimal(c, "max_price", "maxRent"),
	}
	q.Bedrooms, _ = strconv.Atoi(c.Query("bedrooms"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Service.ListPublic(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	v, err := h.Service.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// POST /api/listings
//
// Both the detailed and the quick listing forms are accepted; see
// model.PropertyFromDocument for the field names.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := h.Service.Create(c.Request.Context(), middleware.ActorFrom(c), model.PropertyFromDocument(doc))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// PUT /api/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := h.Service.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), model.PropertyFromDocument(doc))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /api/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GET /api/me/listings
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	list, err := h.Service.ListMine(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GET /api/admin/listings?status=pending
func (h *ListingHandler) GetByStatus(c *gin.Context) {
	h.listByStatus(c, model.Status(c.Query("status")))
}

// GET /api/admin/listings/pending
func (h *ListingHandler) GetPending(c *gin.Context) {
	h.listByStatus(c, model.StatusPending)
}

func (h *ListingHandler) listByStatus(c *gin.Context, status model.Status) {
	list, err := h.Service.ListByStatus(c.Request.Context(), middleware.ActorFrom(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GET /api/admin/listings/video-requests
func (h *ListingHandler) GetVideoRequests(c *gin.Context) {
	list, err := h.Service.ListVideoRequests(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// PUT /api/admin/listings/:id/approve
func (h *ListingHandler) Approve(c *gin.Context) {
	v, err := h.Service.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PUT /api/admin/listings/:id/reject
func (h *ListingHandler) Reject(c *gin.Context) {
	v, err := h.Service.Reject(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
