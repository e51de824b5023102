// Package process delivers termination signals to worker processes chosen
// by the killing policy.
package process

import (
	"context"
	"fmt"
	"os"

	"oomguard/internal/model"
	"oomguard/pkg/logger"

	"go.uber.org/zap"
)

// Terminator kills worker processes by PID. Reaping and restart bookkeeping
// belong to the process supervisor, not here.
type Terminator struct{}

// NewTerminator creates a PID-based worker terminator.
func NewTerminator() *Terminator {
	return &Terminator{}
}

// KillWorker sends SIGKILL to the worker's process. Non-positive PIDs are
// refused: kill(0, sig) and kill(-pid, sig) target a whole process group.
func (t *Terminator) KillWorker(ctx context.Context, worker *model.Worker) error {
	if worker.PID <= 0 {
		return fmt.Errorf("refusing to signal non-positive pid %d for worker %s", worker.PID, worker.ID)
	}

	proc, err := os.FindProcess(worker.PID)
	if err != nil {
		return fmt.Errorf("find worker process %d: %w", worker.PID, err)
	}

	logger.Info("killing worker process",
		zap.String("worker_id", worker.ID),
		zap.Int("pid", worker.PID),
		zap.String("task_id", worker.Task.ID),
	)

	if err := proc.Kill(); err != nil {
		return fmt.Errorf("kill worker process %d: %w", worker.PID, err)
	}
	return nil
}
