package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/labcalc/internal/server/handlers"
)

// New wires the Gin engine with the calculation routes and middlewares.
func New(handler *handlers.CalculationHandler, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Metrics are registered per engine, never on the global registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := newHTTPMetrics(reg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metrics.middleware())

	v1 := r.Group("/api/v1")
	v1.POST("/dilution", handler.Dilution)
	v1.POST("/molarity", handler.Molarity)
	v1.POST("/reconstitution", handler.Reconstitution)
	v1.POST("/mass-volume", handler.MassVolume)
	v1.POST("/cell-seeding", handler.CellSeeding)
	v1.POST("/plate-seeding", handler.PlateSeeding)
	v1.POST("/serial-dose", handler.SerialDose)
	v1.POST("/serial-dilution", handler.SerialDilution)
	v1.GET("/units", handler.Units)
	v1.GET("/plates", handler.Plates)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
