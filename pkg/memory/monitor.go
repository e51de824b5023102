// Package memory implements the node's memory pressure monitor: a periodic
// sampler of system memory that reports on every tick whether usage crossed
// the configured threshold.
package memory

import (
	"context"
	"sync"
	"time"

	"oomguard/internal/model"
	"oomguard/pkg/interfaces"
	"oomguard/pkg/logger"

	"go.uber.org/zap"
)

// Callback receives the pressure verdict for one tick. It runs synchronously
// inside the tick, so a blocking callback delays subsequent ticks; tick
// frequency is seconds-scale and this trade-off favors simplicity.
type Callback func(isAboveThreshold bool, snapshot model.MemorySnapshot, usageThreshold float64)

// Config is immutable for the monitor's lifetime.
type Config struct {
	// UsageThreshold is the used/total fraction at or above which pressure
	// is signaled. Must be within [0,1].
	UsageThreshold float64

	// MinMemoryFreeBytes is an absolute free-memory floor; pressure is
	// signaled when free memory drops below it. -1 disables the check.
	MinMemoryFreeBytes int64

	// RefreshInterval is the tick period. 0 disables automatic ticking;
	// the callback then fires only on an explicit Tick call.
	RefreshInterval time.Duration
}

// Monitor periodically samples system memory and invokes its callback with
// the raw snapshot and the threshold verdict on every tick.
type Monitor struct {
	cfg      Config
	sampler  interfaces.MemorySampler
	callback Callback

	// tickMu serializes ticks end to end: the sample and the callback run
	// as one critical section, so a manual Tick never overlaps the ticker
	// goroutine. The callback may take on-demand snapshots, which is why
	// sampler reads get their own lock below.
	tickMu sync.Mutex

	// mu guards lifecycle state and serializes sampler reads.
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewMonitor creates a monitor. The callback may be nil when only on-demand
// snapshots are needed.
func NewMonitor(cfg Config, sampler interfaces.MemorySampler, callback Callback) *Monitor {
	return &Monitor{
		cfg:      cfg,
		sampler:  sampler,
		callback: callback,
	}
}

// Start begins automatic ticking at the configured refresh interval. With a
// zero interval the monitor never ticks on its own and Start is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		logger.Warn("memory monitor already started")
		return
	}
	if m.cfg.RefreshInterval <= 0 {
		m.mu.Unlock()
		logger.Info("memory monitor automatic ticking disabled",
			zap.Duration("refresh_interval", m.cfg.RefreshInterval))
		return
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx)

	logger.Info("memory monitor started",
		zap.Float64("usage_threshold", m.cfg.UsageThreshold),
		zap.Int64("min_memory_free_bytes", m.cfg.MinMemoryFreeBytes),
		zap.Duration("refresh_interval", m.cfg.RefreshInterval),
	)
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("memory monitor stopped")
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Stop halts future ticks and waits for an in-flight tick to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Tick samples memory once and invokes the callback with the verdict. Ticks
// never run concurrently: a manual Tick blocks until any in-flight tick,
// callback included, has finished. A failed sensor read degrades to a zeroed
// snapshot that never signals pressure; the failure does not disturb future
// ticks.
func (m *Monitor) Tick() {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	snapshot, err := m.sample()
	if err != nil {
		logger.Warn("memory sample failed, skipping pressure check", zap.Error(err))
		if m.callback != nil {
			m.callback(false, snapshot, m.cfg.UsageThreshold)
		}
		return
	}
	if m.callback != nil {
		m.callback(m.IsAboveThreshold(snapshot), snapshot, m.cfg.UsageThreshold)
	}
}

// GetMemorySnapshot returns a fresh reading without waiting for the next
// tick. On sensor failure it returns a zeroed snapshot stamped with the
// capture time.
func (m *Monitor) GetMemorySnapshot() model.MemorySnapshot {
	snapshot, err := m.sample()
	if err != nil {
		logger.Warn("memory sample failed", zap.Error(err))
	}
	return snapshot
}

// IsAboveThreshold applies the pressure formula to a snapshot: usage at or
// above the threshold fraction, or free memory under the configured floor.
func (m *Monitor) IsAboveThreshold(s model.MemorySnapshot) bool {
	if s.TotalBytes > 0 && s.UsedFraction() >= m.cfg.UsageThreshold {
		return true
	}
	return m.cfg.MinMemoryFreeBytes >= 0 && s.TotalBytes > 0 && s.FreeBytes < m.cfg.MinMemoryFreeBytes
}

// UsageThreshold returns the configured usage threshold fraction.
func (m *Monitor) UsageThreshold() float64 {
	return m.cfg.UsageThreshold
}

func (m *Monitor) sample() (model.MemorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, err := m.sampler.Sample()
	if err != nil {
		return model.MemorySnapshot{CapturedAt: time.Now()}, err
	}
	return snapshot, nil
}
