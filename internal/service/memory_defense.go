package service

import (
	"context"
	"sync"
	"time"

	"oomguard/internal/model"
	"oomguard/pkg/interfaces"
	"oomguard/pkg/killpolicy"
	"oomguard/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxKillEvents = 64

// MemoryDefense reacts to memory pressure reported by the monitor: on each
// above-threshold tick it asks the killing policy for a victim from the live
// worker set, instructs the terminator, removes the victim from the registry
// and records a kill event. Select, kill and remove run as one serialized
// sequence, so the policy always sees a fresh, duplicate-free worker set even
// when pressure reports race.
type MemoryDefense struct {
	registry   *WorkerRegistry
	policy     killpolicy.WorkerKillingPolicy
	policyName string
	terminator interfaces.WorkerTerminator
	monitor    interfaces.SnapshotReader

	// killMu serializes KillOne: a victim must leave the registry before
	// the next selection reads it, or two racing reports kill the same
	// worker twice.
	killMu sync.Mutex

	mu        sync.Mutex
	events    []*model.KillEvent
	maxEvents int
}

// NewMemoryDefense wires the kill loop. maxEvents bounds the kill history;
// 0 uses the default. The monitor is attached separately because its tick
// callback is this service.
func NewMemoryDefense(registry *WorkerRegistry, policyName string, terminator interfaces.WorkerTerminator, maxEvents int) *MemoryDefense {
	if maxEvents <= 0 {
		maxEvents = defaultMaxKillEvents
	}
	return &MemoryDefense{
		registry:   registry,
		policy:     killpolicy.NewPolicy(policyName),
		policyName: policyName,
		terminator: terminator,
		maxEvents:  maxEvents,
	}
}

// SetMonitor attaches the snapshot source passed to the policy for its
// candidate dumps.
func (d *MemoryDefense) SetMonitor(monitor interfaces.SnapshotReader) {
	d.monitor = monitor
}

// HandlePressure is the memory monitor tick callback.
func (d *MemoryDefense) HandlePressure(isAboveThreshold bool, snapshot model.MemorySnapshot, usageThreshold float64) {
	if !isAboveThreshold {
		return
	}

	logger.Warn("memory usage above threshold",
		zap.Float64("used_fraction", snapshot.UsedFraction()),
		zap.Float64("usage_threshold", usageThreshold),
		zap.Int64("used_bytes", snapshot.UsedBytes),
		zap.Int64("free_bytes", snapshot.FreeBytes),
	)

	d.KillOne(context.Background(), snapshot)
}

// KillOne selects and terminates a single victim, the unit of reclamation
// being one whole worker process. It reports whether a worker was killed;
// false means memory pressure cannot be relieved by killing a worker and
// the condition must be escalated outside this node.
func (d *MemoryDefense) KillOne(ctx context.Context, snapshot model.MemorySnapshot) bool {
	d.killMu.Lock()
	defer d.killMu.Unlock()

	workers := d.registry.LiveWorkers()

	victim := d.policy.SelectWorkerToKill(workers, d.monitor)
	if victim == nil {
		logger.Warn("no worker can be killed to relieve memory pressure",
			zap.Int("live_workers", len(workers)))
		return false
	}

	if err := d.terminator.KillWorker(ctx, victim); err != nil {
		logger.Error("failed to kill worker",
			zap.String("worker_id", victim.ID),
			zap.Int("pid", victim.PID),
			zap.Error(err),
		)
		return false
	}

	if err := d.registry.Remove(victim.ID); err != nil {
		logger.Warn("killed worker was already deregistered",
			zap.String("worker_id", victim.ID))
	}

	d.record(victim, snapshot)

	logger.Info("worker killed to relieve memory pressure",
		zap.String("worker_id", victim.ID),
		zap.String("task_id", victim.Task.ID),
		zap.String("task_kind", string(victim.Task.Kind)),
		zap.Int("depth", victim.Task.Depth),
		zap.Bool("retriable", victim.Task.Retriable()),
		zap.String("policy", d.policyName),
	)
	return true
}

// KillEvents returns the recorded kill history, newest last.
func (d *MemoryDefense) KillEvents() []*model.KillEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]*model.KillEvent, len(d.events))
	copy(result, d.events)
	return result
}

func (d *MemoryDefense) record(victim *model.Worker, snapshot model.MemorySnapshot) {
	event := &model.KillEvent{
		ID:        uuid.NewString(),
		WorkerID:  victim.ID,
		PID:       victim.PID,
		TaskID:    victim.Task.ID,
		TaskKind:  victim.Task.Kind,
		Depth:     victim.Task.Depth,
		Retriable: victim.Task.Retriable(),
		Policy:    d.policyName,
		Snapshot:  snapshot,
		KilledAt:  time.Now(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	if len(d.events) > d.maxEvents {
		d.events = d.events[len(d.events)-d.maxEvents:]
	}
}
