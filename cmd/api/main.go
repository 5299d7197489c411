// fieldbook/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fieldbook/config"
	"fieldbook/internal/api/handlers"
	"fieldbook/internal/api/routes"
	"fieldbook/internal/database"
	"fieldbook/internal/logger"
	"fieldbook/internal/metrics"
	"fieldbook/internal/s3"
	"fieldbook/internal/service"
	"fieldbook/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.InitLogger()

	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	logger.SetLogLevel(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Metrics for the store gateway
	storeMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// 3. Optional S3 upload of exports
	var uploader handlers.ExportUploader
	if cfg.S3.Enabled() {
		s3Uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 uploader")
		}
		uploader = s3Uploader
	}

	// 4. MongoDB. A failed first connection is not fatal, requests reconnect.
	gw := database.New(cfg.Mongo, database.WithObserver(storeMetrics.ObserveStoreOp))
	if err := gw.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("MongoDB not reachable at startup, continuing")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Close(closeCtx); err != nil {
			logger.ErrorWithStack(err)
		}
	}()

	// 5. Service, websocket hub and router
	wsHub := socket.NewHub()
	svc := service.New(gw, wsHub)

	if cfg.Server.LogLevel != "debug" && cfg.Server.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(svc, uploader, wsHub, promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	// 6. Start server
	log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Failed to run server")
	}
}
