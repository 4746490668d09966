package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ccrew/flightinventory/api"
	"github.com/ccrew/flightinventory/config"
	"github.com/ccrew/flightinventory/internal/auth"
	"github.com/ccrew/flightinventory/internal/metrics"
	"github.com/ccrew/flightinventory/internal/service/flights"
	"github.com/ccrew/flightinventory/internal/service/reservation"
	"github.com/ccrew/flightinventory/internal/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, log *logrus.Logger, authSvc *auth.Service, flightSvc flights.FlightUseCase, reservationSvc reservation.ReservationUseCase) error {
	router := newRouter(cfg, log, authSvc, flightSvc, reservationSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, log *logrus.Logger, authSvc *auth.Service, flightSvc flights.FlightUseCase, reservationSvc reservation.ReservationUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(metrics.Middleware)
	router.Use(tracing.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	flightHandler := api.NewFlightHandler(flightSvc)
	flightHandler.Register(v1.Group("/flights"))

	reservationHandler := api.NewReservationHandler(reservationSvc)
	reservationGroup := v1.Group("/reservations")
	reservationGroup.Use(auth.Middleware(authSvc))
	reservationHandler.Register(reservationGroup)

	return router
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}
