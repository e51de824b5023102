// Package killpolicy decides which worker process to terminate when the
// node is under memory pressure. Policies are pure functions of the worker
// set passed in: they keep no state across calls, never mutate their input
// and never retain references to it.
package killpolicy

import (
	"encoding/json"

	"oomguard/internal/model"
	"oomguard/pkg/interfaces"
	"oomguard/pkg/logger"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

// Policy names accepted by NewPolicy.
const (
	PolicyRetriableLIFO = "retriable_lifo"
	PolicyGroupByDepth  = "group_by_depth"
)

// WorkerKillingPolicy selects the worker to terminate under memory pressure.
// Implementations return nil for an empty worker set, otherwise an element
// of the input slice. The monitor argument is informational only (used to
// attach the current snapshot to the candidate dump) and never affects the
// selection outcome.
type WorkerKillingPolicy interface {
	SelectWorkerToKill(workers []*model.Worker, monitor interfaces.SnapshotReader) *model.Worker
}

// NewPolicy returns the policy registered under name. An unknown name logs
// an error and falls back to retriable LIFO.
func NewPolicy(name string) WorkerKillingPolicy {
	switch name {
	case PolicyGroupByDepth:
		logger.Info("using group_by_depth worker killing policy")
		return NewGroupByDepthPolicy()
	case PolicyRetriableLIFO:
		logger.Info("using retriable_lifo worker killing policy")
		return NewRetriableLIFOPolicy()
	default:
		logger.Error("invalid worker killing policy, defaulting to retriable_lifo",
			zap.String("name", name))
		return NewRetriableLIFOPolicy()
	}
}

// killCandidate is the log form of one ranked worker.
type killCandidate struct {
	WorkerID    string         `json:"worker_id"`
	PID         int            `json:"pid"`
	TaskID      string         `json:"task_id"`
	Kind        model.TaskKind `json:"kind"`
	Depth       int            `json:"depth"`
	Retriable   bool           `json:"retriable"`
	AssignedSeq int64          `json:"assigned_seq"`
}

// logCandidates dumps the top ranked kill candidates together with the
// snapshot current at selection time. The head of ranked is the victim.
func logCandidates(policy string, ranked []*model.Worker, monitor interfaces.SnapshotReader) {
	const maxToLog = 10

	if !logger.Log.Core().Enabled(zap.DebugLevel) {
		return
	}

	candidates := make([]killCandidate, 0, maxToLog)
	for i, w := range ranked {
		if i >= maxToLog {
			break
		}
		candidates = append(candidates, killCandidate{
			WorkerID:    w.ID,
			PID:         w.PID,
			TaskID:      w.Task.ID,
			Kind:        w.Task.Kind,
			Depth:       w.Task.Depth,
			Retriable:   w.Task.Retriable(),
			AssignedSeq: w.AssignedSeq,
		})
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return
	}

	var snapshot model.MemorySnapshot
	if monitor != nil {
		snapshot = monitor.GetMemorySnapshot()
	}

	logger.Debug("ranked kill candidates",
		zap.String("policy", policy),
		zap.Int64("used_bytes", snapshot.UsedBytes),
		zap.Int64("free_bytes", snapshot.FreeBytes),
		zap.String("workers", string(pretty.Ugly(payload))),
	)
}
