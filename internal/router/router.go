package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/handler"
	"github.com/ulk-sapr/equipment-api/internal/middleware"
	"github.com/ulk-sapr/equipment-api/internal/service"
	"github.com/ulk-sapr/equipment-api/pkg/logger"
	corsmiddleware "github.com/ulk-sapr/equipment-api/pkg/middleware/cors"
	"github.com/ulk-sapr/equipment-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/ulk-sapr/equipment-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Students  *handler.StudentHandler
	Access    *handler.AccessHandler
	Equipment *handler.EquipmentHandler
	Catalog   *handler.CatalogHandler
	System    *handler.MetricsHandler
}

// Options controls middleware and optional routes.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	EnableDocs     bool
}

// New builds the gin engine with the middleware chain and all routes.
func New(h Handlers, metrics *service.MetricsService, logr *zap.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/", h.System.Info)
	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix, ratelimit.New(opts.RateLimitRPS, opts.RateLimitBurst), middleware.Timeout(opts.RequestTimeout))

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/by-card/:cardId", h.Students.ByCard)
	students.POST("/:id/access", h.Access.Set)
	students.GET("/:id/rooms", h.Access.Rooms)

	api.GET("/access/check", h.Access.Check)

	equipment := api.Group("/equipment")
	equipment.GET("", h.Equipment.List)
	equipment.POST("", h.Equipment.Create)
	equipment.GET("/:id", h.Equipment.Get)
	equipment.POST("/:id/checkout", h.Equipment.Checkout)
	equipment.POST("/:id/return", h.Equipment.Return)

	api.GET("/requests", h.Equipment.Requests)

	api.GET("/rooms", h.Catalog.Rooms)
	api.GET("/hardware-types", h.Catalog.HardwareTypes)
	api.GET("/buildings", h.Catalog.Buildings)
	api.GET("/labs", h.Catalog.Labs)
	api.GET("/places", h.Catalog.Places)
	api.GET("/item-statuses", h.Catalog.ItemStatuses)

	return r
}
