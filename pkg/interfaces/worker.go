package interfaces

import (
	"context"

	"oomguard/internal/model"
)

// WorkerSource provides the current live worker set. Implementations return
// a fresh copy on every call; callers never share or retain the backing
// collection.
type WorkerSource interface {
	LiveWorkers() []*model.Worker
}

// WorkerTerminator delivers the actual termination signal to a worker
// process. The victim has already been chosen by the killing policy.
type WorkerTerminator interface {
	KillWorker(ctx context.Context, worker *model.Worker) error
}
