package infrastructure

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/logger"
	startup "rollcall.io/infrastructure/startUp"
)

type serverInterface interface {
	Start(cfg env.Config, handler http.Handler) error
	Shutdown(timeout time.Duration) error
}

// StartServer boots every service, serves http until SIGINT or SIGTERM and
// then drains requests before closing the stores.
func StartServer() {
	cfg, err := env.Load()
	if err != nil {
		panic(err)
	}
	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		panic(fmt.Sprintf("invalid gin mode used - %s", cfg.GinMode))
	}

	services, err := startup.StartServices(cfg)
	if err != nil {
		logger.Error("could not start services", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		startup.CleanUpServices()
		os.Exit(1)
	}
	defer startup.CleanUpServices()

	var server serverInterface = &ginServer{}
	errs := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on PORT %s", cfg.Port))
		errs <- server.Start(cfg, NewRouter(cfg, services.Controller, services.Tokens))
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutting down", logger.LoggerOptions{
			Key:  "signal",
			Data: sig.String(),
		})
		if err := server.Shutdown(15 * time.Second); err != nil {
			logger.Error("server shutdown failed", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	case err := <-errs:
		if err != nil {
			logger.Error("server stopped", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}
}
