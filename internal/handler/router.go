package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rentease-service/internal/middleware"
	"rentease-service/internal/service"
)

// Services bundles everything the HTTP layer talks to.
type Services struct {
	Properties *service.PropertyService
	Interests  *service.InterestService
	Settings   *service.SettingsService
	Users      *service.UserService
	Messages   *service.MessageService
	Reports    *service.ReportService
}

// NewRouter wires the /api routes. An empty or "*" origin list allows any
// origin.
func NewRouter(svc Services, auth *middleware.Auth, origins []string) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(origins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	listings := &ListingHandler{Service: svc.Properties}
	photos := &PhotoHandler{Service: svc.Properties}
	interests := &InterestHandler{Service: svc.Interests}
	settings := &SettingsHandler{Service: svc.Settings}
	users := &UserHandler{Service: svc.Users}
	messages := &MessageHandler{Service: svc.Messages}
	reports := &ReportHandler{Service: svc.Reports}

	api := r.Group("/api")

	// 1. Public routes; a token, when present, widens what the caller sees
	public := api.Group("/")
	public.Use(auth.OptionalAuth())
	{
		listings.RegisterPublic(public)
		photos.RegisterPublic(public)
		interests.RegisterPublic(public)
		settings.RegisterPublic(public)
		messages.RegisterPublic(public)
	}

	// 2. Signed-in users
	protected := api.Group("/")
	protected.Use(auth.Authenticate())
	{
		listings.RegisterProtected(protected)
		photos.RegisterProtected(protected)
		interests.RegisterProtected(protected)
		users.RegisterProtected(protected)
	}

	// 3. Admins
	admin := api.Group("/admin")
	admin.Use(auth.Authenticate(), middleware.RequireAdmin())
	{
		listings.RegisterAdmin(admin)
		interests.RegisterAdmin(admin)
		settings.RegisterAdmin(admin)
		users.RegisterAdmin(admin)
		messages.RegisterAdmin(admin)
		reports.RegisterAdmin(admin)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
