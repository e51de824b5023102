package handler

import (
	"net/http"

	"oomguard/internal/model"
	"oomguard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkerHandler lets the process supervisor report worker processes and
// their task assignments to the registry.
type WorkerHandler struct {
	registry *service.WorkerRegistry
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(registry *service.WorkerRegistry) *WorkerHandler {
	return &WorkerHandler{registry: registry}
}

// List returns the live worker set in registration order
// GET /v1/workers
func (h *WorkerHandler) List(c *gin.Context) {
	workers := h.registry.LiveWorkers()

	c.JSON(http.StatusOK, gin.H{
		"workers": workers,
		"count":   len(workers),
	})
}

// Register records a worker process and its assigned task
// POST /v1/workers
func (h *WorkerHandler) Register(c *gin.Context) {
	var req model.RegisterWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unknown task kinds stay registrable; the policy classifies them as
	// non-retriable rather than rejecting them here.
	if req.Task.ID == "" {
		req.Task.ID = uuid.NewString()
	}
	if req.Task.Depth < 1 {
		req.Task.Depth = 1
	}

	worker := h.registry.Register(req.PID, req.Task)

	c.JSON(http.StatusCreated, gin.H{
		"worker": worker,
	})
}

// Deregister removes a worker from the registry
// DELETE /v1/workers/:worker_id
func (h *WorkerHandler) Deregister(c *gin.Context) {
	workerID := c.Param("worker_id")

	if err := h.registry.Remove(workerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "worker deregistered",
		"id":      workerID,
	})
}
