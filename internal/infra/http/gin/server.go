package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayd/internal/infra/config"
	"stayd/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	ListByGuest(c *gin.Context)
	ExpirePending(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
}

type PricingHTTP interface {
	Quote(c *gin.Context)
}

type UnitHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListByOwner(c *gin.Context)
	SetStatus(c *gin.Context)
	UpsertRule(c *gin.Context)
	DeactivateRule(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Pricing      PricingHTTP
	Unit         UnitHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.ListByGuest)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/expire-pending", h.Booking.ExpirePending)
	}
	if h.Unit != nil {
		api.POST("/units", h.Unit.Create)
		api.GET("/units", h.Unit.ListByOwner)
		api.GET("/units/:id", h.Unit.Get)
		api.POST("/units/:id/status", h.Unit.SetStatus)
		api.POST("/units/:id/rules", h.Unit.UpsertRule)
		api.POST("/units/:id/rules/:ruleID/deactivate", h.Unit.DeactivateRule)
	}
	if h.Availability != nil {
		api.GET("/units/:id/availability", h.Availability.Check)
	}
	if h.Pricing != nil {
		api.GET("/units/:id/quote", h.Pricing.Quote)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
