package service

import (
	"fmt"
	"sync"

	"oomguard/internal/model"

	"github.com/google/uuid"
)

// WorkerRegistry is the node-local record of live worker processes and
// their assigned tasks. It is the authoritative worker set handed to
// killing policies: LiveWorkers always returns a fresh copy, registered
// workers carry unique IDs, and each worker holds exactly one task.
type WorkerRegistry struct {
	mu      sync.RWMutex
	workers map[string]*model.Worker
	order   []string // registration order, for stable listings
}

// NewWorkerRegistry creates an empty registry.
func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		workers: make(map[string]*model.Worker),
	}
}

// Register records a worker process running the given task and returns its
// handle. The assignment sequence stamped here is the policies' LIFO key.
func (r *WorkerRegistry) Register(pid int, task *model.TaskSpec) *model.Worker {
	worker := &model.Worker{
		ID:  uuid.NewString(),
		PID: pid,
	}
	worker.AssignTask(task)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[worker.ID] = worker
	r.order = append(r.order, worker.ID)
	return worker
}

// Remove deletes a worker from the registry.
func (r *WorkerRegistry) Remove(workerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workers[workerID]; !ok {
		return fmt.Errorf("worker %s not registered", workerID)
	}
	delete(r.workers, workerID)
	for i, id := range r.order {
		if id == workerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the worker with the given ID, or nil.
func (r *WorkerRegistry) Get(workerID string) *model.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workers[workerID]
}

// LiveWorkers returns a copy of the current worker set in registration
// order. Callers may not see workers registered after the call returns.
func (r *WorkerRegistry) LiveWorkers() []*model.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Worker, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.workers[id])
	}
	return result
}

// Count returns the number of live workers.
func (r *WorkerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}
