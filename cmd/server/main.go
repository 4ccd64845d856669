package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/a2a"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/logging"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/provisioner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logging.New(cfg.Log)

	for name, value := range map[string]string{
		"RELUME_API_KEY":       cfg.Relume.APIKey,
		"WEBFLOW_API_KEY":      cfg.Webflow.APIKey,
		"CLOUDFLARE_API_TOKEN": cfg.Cloudflare.APIToken,
	} {
		if value == "" {
			log.WithField("credential", name).Warn("credential not set")
		}
	}

	generator := provisioner.NewFromConfig(cfg, log)
	a2aHandler := a2a.NewA2AHandler(generator, cfg.Server.RequestTimeout, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), a2a.RequestLoggingMiddleware(log))

	// Endpoints
	router.GET("/.well-known/agent.json", a2aHandler.ServeAgentCard)
	router.POST("/a2a/provisioner", a2aHandler.HandleProvisioner)
	router.POST("/api/websites", a2aHandler.HandleCreateWebsite)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.WithField("addr", addr).Info("Agent Site Provisioner starting")
		log.Infof("Agent card available at: http://localhost%s/.well-known/agent.json", addr)
		log.Infof("A2A endpoint available at: http://localhost%s/a2a/provisioner", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}
