package handler

import (
	"net/http"

	"oomguard/internal/service"
	"oomguard/pkg/memory"

	"github.com/gin-gonic/gin"
)

// MemoryHandler exposes the monitor's view of system memory and the kill
// history over the ops API.
type MemoryHandler struct {
	monitor *memory.Monitor
	defense *service.MemoryDefense
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(monitor *memory.Monitor, defense *service.MemoryDefense) *MemoryHandler {
	return &MemoryHandler{
		monitor: monitor,
		defense: defense,
	}
}

// GetMemory returns the current snapshot and threshold verdict
// GET /v1/memory
func (h *MemoryHandler) GetMemory(c *gin.Context) {
	snapshot := h.monitor.GetMemorySnapshot()

	c.JSON(http.StatusOK, gin.H{
		"snapshot":           snapshot,
		"used_fraction":      snapshot.UsedFraction(),
		"usage_threshold":    h.monitor.UsageThreshold(),
		"is_above_threshold": h.monitor.IsAboveThreshold(snapshot),
	})
}

// ListKills returns recent kill events, newest last
// GET /v1/kills
func (h *MemoryHandler) ListKills(c *gin.Context) {
	events := h.defense.KillEvents()

	c.JSON(http.StatusOK, gin.H{
		"kills": events,
		"count": len(events),
	})
}

// TriggerCheck forces one monitor tick. With a zero refresh interval this is
// the only way a tick happens, which makes it handy for debugging the kill
// path.
// POST /v1/kills/trigger
func (h *MemoryHandler) TriggerCheck(c *gin.Context) {
	h.monitor.Tick()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "memory pressure check triggered",
	})
}
