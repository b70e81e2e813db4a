package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/metrics"
	"github.com/icsherer/Herd-Ledger/internal/server/handlers"
)

// Deps are the handlers and instrumentation the router mounts. Webhook,
// Weather and Gatherer may be nil; their routes are then not registered.
type Deps struct {
	Ledger   *handlers.LedgerHandler
	Webhook  *handlers.WebhookHandler
	Weather  *handlers.WeatherHandler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// New wires the Gin engine with required routes and middlewares.
func New(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(d.Logger))
	r.Use(metricsMiddleware(d.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if d.Webhook != nil {
		r.GET("/webhook", d.Webhook.Verify)
		r.POST("/webhook", d.Webhook.Receive)
		r.POST("/send-message", d.Webhook.SendMessage)
	}

	api := r.Group("/api/v1")
	registerLedgerRoutes(api, d.Ledger)
	if d.Weather != nil {
		api.GET("/weather", d.Weather.Forecast)
	}

	if d.Logger != nil {
		d.Logger.Info("router initialized")
	}

	return r
}

func registerLedgerRoutes(api *gin.RouterGroup, h *handlers.LedgerHandler) {
	api.GET("/dashboard", h.Dashboard)
	api.GET("/due", h.Due)
	api.GET("/overdue", h.Overdue)
	api.GET("/vaccinations/due", h.VaccinationsDue)
	api.GET("/integrity", h.Integrity)

	animals := api.Group("/animals")
	animals.GET("", h.ListAnimals)
	animals.POST("", h.RegisterAnimal)
	animals.GET("/:id", h.GetAnimal)
	animals.PATCH("/:id", h.EditAnimal)
	animals.DELETE("/:id", h.RemoveAnimal)
	animals.POST("/:id/weights", h.AttachWeight)
	animals.POST("/:id/treatments", h.AttachTreatment)
	animals.DELETE("/:id/treatments/:treatmentId", h.RemoveTreatment)
	animals.POST("/:id/vaccinations", h.AttachVaccination)
	animals.DELETE("/:id/vaccinations/:vaccinationId", h.RemoveVaccination)
	animals.POST("/:id/movements", h.AttachMovement)
	animals.POST("/:id/death", h.MarkDeceased)
	animals.POST("/:id/sale", h.MarkSold)
	animals.POST("/:id/castration", h.MarkCastrated)
	animals.GET("/:id/feeder", h.FeederStatus)

	breeding := api.Group("/breeding")
	breeding.GET("", h.ListBreeding)
	breeding.POST("", h.LogBreeding)
	breeding.PATCH("/:id", h.EditBreeding)
	breeding.DELETE("/:id", h.RemoveBreeding)
	breeding.POST("/:id/delivered", h.MarkDelivered)
	breeding.PUT("/:id/outcome", h.SetCalfOutcome)
	breeding.DELETE("/:id/outcome", h.RemoveCalfOutcome)

	offspring := api.Group("/offspring/:motherId")
	offspring.GET("", h.ListOffspring)
	offspring.POST("", h.AddOffspring)
	offspring.PUT("/:id", h.EditOffspring)
	offspring.DELETE("/:id", h.DeleteOffspring)

	feeders := api.Group("/feeders")
	feeders.GET("", h.ListFeeders)
	feeders.POST("", h.EnrollFeeder)
	feeders.PATCH("/:id", h.UpdateFeeder)
	feeders.DELETE("/:id", h.RemoveFeeder)

	notes := api.Group("/notes")
	notes.GET("", h.ListNotes)
	notes.POST("", h.AddNote)
	notes.DELETE("/:id", h.RemoveNote)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// metricsMiddleware records request counts by route template, so ids in the
// path do not create new series. Unmatched paths share one label.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
