package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logging "github.com/tim-beatham/waterq/pkg/log"
)

type ApiServer interface {
	Handler() http.Handler
	Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error
}

type WaterServer struct {
	router *gin.Engine
	conf   ApiServerConf
}

// corsMiddleware allows the dashboard to call the API from any origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *WaterServer) Handler() http.Handler {
	return s.router
}

// Run: serves the API on addr until ctx is cancelled, then waits up to
// shutdownTimeout for in-flight requests
func (s *WaterServer) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errs := make(chan error, 1)

	go func() {
		logging.Log.WriteInfof("running API server on %s", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logging.Log.WriteInfof("shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)

	if serveErr := <-errs; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}

	return err
}

func NewWaterServer(conf ApiServerConf) (ApiServer, error) {
	if conf.Collection == nil {
		return nil, errors.New("api server requires a collection")
	}

	if conf.Querier == nil {
		return nil, errors.New("api server requires a querier")
	}

	router := gin.New()

	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output: logging.Log.Writer(),
	}))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	waterServer := &WaterServer{
		router: router,
		conf:   conf,
	}

	api := router.Group("/api")
	api.GET("/health", waterServer.Health)
	api.GET("/observations", waterServer.GetObservations)
	api.GET("/records", waterServer.GetObservations)
	api.GET("/stats", waterServer.GetStats)
	api.GET("/outliers", waterServer.GetOutliers)
	api.GET("/query", waterServer.Query)
	return waterServer, nil
}
