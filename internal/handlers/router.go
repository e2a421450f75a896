package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"groom-admin-backend/internal/middleware"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Bookings  *BookingsHandler
	Services  *ServicesHandler
	Plans     *PlansHandler
	Contact   *ContactHandler
	Users     *UsersHandler
	Dashboard *DashboardHandler
}

type RouterConfig struct {
	Logger         *slog.Logger
	Auth           gin.HandlerFunc
	AllowedOrigins []string
}

// NewRouter wires the middleware chain and every route.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check and metrics (no auth)
	router.GET("/health", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	api := v1.Group("")
	api.Use(cfg.Auth)

	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/auth/user", h.Auth.GetCurrentUser)
	api.PATCH("/auth/user", h.Auth.UpdateCurrentUser)

	api.GET("/bookings", h.Bookings.ListBookings)
	api.GET("/bookings/:id", h.Bookings.GetBooking)
	api.POST("/bookings/:id/confirm", h.Bookings.ConfirmBooking)
	api.POST("/bookings/:id/checkout", h.Bookings.CheckoutBooking)
	api.DELETE("/bookings/:id", h.Bookings.DeleteBooking)

	api.GET("/services", h.Services.ListServices)
	api.POST("/services", h.Services.CreateService)
	api.GET("/services/:id", h.Services.GetService)
	api.PATCH("/services/:id", h.Services.UpdateService)
	api.DELETE("/services/:id", h.Services.DeleteService)

	api.GET("/plans", h.Plans.ListPlans)
	api.POST("/plans", h.Plans.CreatePlan)
	api.PATCH("/plans/:id", h.Plans.UpdatePlan)
	api.DELETE("/plans/:id", h.Plans.DeletePlan)

	api.GET("/contact", h.Contact.GetContact)
	api.PATCH("/contact", h.Contact.UpdateContact)

	api.GET("/users", h.Users.ListUsers)
	api.POST("/users", h.Users.CreateUser)
	api.GET("/users/:id", h.Users.GetUser)
	api.PATCH("/users/:id", h.Users.UpdateUser)
	api.DELETE("/users/:id", h.Users.DeleteUser)

	api.GET("/dashboard", h.Dashboard.GetDashboard)

	return router
}
