package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/middleware"
	"github.com/noah-isme/tutorbook/internal/service"
	"github.com/noah-isme/tutorbook/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutorbook/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutorbook/pkg/middleware/requestid"
)

// RouterConfig holds the knobs that shape the route table.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableMetrics  bool
	EnableDocs     bool
}

// Services bundles what the handlers need.
type Services struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Requests *service.LessonRequestService
	Exports  *service.ExportService
	Metrics  *service.MetricsService
	Checks   map[string]ReadinessCheck
}

// NewRouter builds the gin engine with the HTML site, the JSON API and the
// operational endpoints.
func NewRouter(cfg RouterConfig, svc Services, logr *zap.Logger) (*gin.Engine, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	if cfg.EnableMetrics {
		r.Use(middleware.Metrics(svc.Metrics, "/metrics"))
	}

	pages := NewPageHandler(svc.Catalog, svc.Bookings, svc.Requests, logr)
	api := NewAPIHandler(svc.Catalog, svc.Bookings, svc.Requests, svc.Exports)
	ops := NewMetricsHandler(svc.Metrics, svc.Checks, logr)

	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if cfg.EnableMetrics {
		r.GET("/metrics", ops.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", pages.Index)
	r.GET("/all/", pages.All)
	r.GET("/goals/:goal/", pages.Goal)
	r.GET("/profiles/:teacher_id/", pages.Profile)
	r.GET("/request/", pages.RequestForm)
	r.POST("/request/", pages.RequestSubmit)
	r.POST("/request_done/", pages.RequestSubmit)
	r.GET("/booking/:teacher_id/:weekday/:time/", pages.BookingForm)
	r.POST("/booking/:teacher_id/:weekday/:time/", pages.BookingSubmit)
	r.POST("/booking_done/", pages.BookingSubmit)
	r.NoRoute(pages.NotFound)

	v1 := r.Group(cfg.APIPrefix)
	v1.Use(corsmiddleware.New(cfg.AllowedOrigins))
	v1.Use(middleware.WithResponseMeta())
	{
		v1.GET("/goals", api.Goals)
		v1.GET("/teachers", api.Teachers)
		v1.GET("/teachers/:id", api.Teacher)
		v1.GET("/bookings", api.Bookings)
		v1.POST("/bookings", api.CreateBooking)
		v1.GET("/bookings/export", api.ExportBookings)
		v1.GET("/bookings/:id", api.Booking)
		v1.GET("/requests", api.Requests)
		v1.POST("/requests", api.CreateRequest)
		if cfg.EnableMetrics {
			v1.GET("/metrics/snapshot", ops.Snapshot)
		}
	}

	return r, nil
}
