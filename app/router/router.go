package router

import (
	"oomguard/app/handler"
	"oomguard/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	memoryHandler *handler.MemoryHandler
	workerHandler *handler.WorkerHandler
}

// NewRouter creates a new Router
func NewRouter(memoryHandler *handler.MemoryHandler, workerHandler *handler.WorkerHandler) *Router {
	return &Router{
		memoryHandler: memoryHandler,
		workerHandler: workerHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	v1 := engine.Group("/v1")
	{
		// Memory pressure state and kill history
		v1.GET("/memory", r.memoryHandler.GetMemory)
		v1.GET("/kills", r.memoryHandler.ListKills)
		v1.POST("/kills/trigger", r.memoryHandler.TriggerCheck)

		// Worker registration interface for the process supervisor
		v1.GET("/workers", r.workerHandler.List)
		v1.POST("/workers", r.workerHandler.Register)
		v1.DELETE("/workers/:worker_id", r.workerHandler.Deregister)
	}
}
