package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

type UserHandler struct {
	Service *service.UserService
}

func (h *UserHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.PUT("/me/profile", h.SyncProfile)
}

func (h *UserHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/users", h.List)
	rg.PUT("/users/:id/role", h.SetRole)
	rg.DELETE("/users/:id", h.Delete)
}

// PUT /api/me/profile
func (h *UserHandler) SyncProfile(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
	}
	u, err := h.Service.SyncProfile(c.Request.Context(), middleware.ActorFrom(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/admin/users?role=admin
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Service.List(c.Request.Context(), middleware.ActorFrom(c), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(users))
}

// PUT /api/admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	if err := h.Service.SetRole(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "role": req.Role})
}

// DELETE /api/admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
