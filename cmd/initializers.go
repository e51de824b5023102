package main

import (
	"fmt"
	"net/http"
	"time"

	"oomguard/app/handler"
	"oomguard/app/router"
	"oomguard/internal/service"
	"oomguard/pkg/config"
	"oomguard/pkg/logger"
	"oomguard/pkg/memory"
	"oomguard/pkg/process"

	"github.com/gin-gonic/gin"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initRegistry initializes the worker registry
func (app *Application) initRegistry() error {
	app.registry = service.NewWorkerRegistry()
	return nil
}

// initDefense initializes the memory defense kill loop
func (app *Application) initDefense() error {
	app.defense = service.NewMemoryDefense(
		app.registry,
		app.config.Policy.Name,
		process.NewTerminator(),
		app.config.Policy.MaxKillEvents,
	)
	return nil
}

// initMonitor initializes the memory monitor with the defense as its tick
// callback
func (app *Application) initMonitor() error {
	cfg := memory.Config{
		UsageThreshold:     app.config.Memory.UsageThreshold,
		MinMemoryFreeBytes: app.config.Memory.MinMemoryFreeBytes,
		RefreshInterval:    time.Duration(app.config.Memory.RefreshIntervalMS) * time.Millisecond,
	}
	app.monitor = memory.NewMonitor(cfg, memory.NewSysinfoSampler(), app.defense.HandlePressure)
	app.defense.SetMonitor(app.monitor)
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.memoryHandler = handler.NewMemoryHandler(app.monitor, app.defense)
	app.workerHandler = handler.NewWorkerHandler(app.registry)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.memoryHandler, app.workerHandler)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	// Create Gin engine
	app.ginEngine = gin.New()
	app.ginEngine.Use(gin.Recovery())

	// Setup routes
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
