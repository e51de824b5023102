package model

import (
	"sync/atomic"
	"time"
)

// assignSeq is the process-wide task assignment counter. Killing policies
// use it as the LIFO key; being a strictly increasing total order, two
// workers never tie on it.
var assignSeq int64

// Worker is a handle to one OS-level worker process holding exactly one
// assigned task. The worker registry owns the authoritative set; killing
// policies receive these read-only for the duration of a single selection
// call and never retain them across calls.
type Worker struct {
	ID          string    `json:"id"`
	PID         int       `json:"pid"`
	Task        *TaskSpec `json:"task"`
	AssignedSeq int64     `json:"assigned_seq"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// AssignTask binds a task to the worker and stamps the assignment order.
func (w *Worker) AssignTask(task *TaskSpec) {
	w.Task = task
	w.AssignedSeq = atomic.AddInt64(&assignSeq, 1)
	w.AssignedAt = time.Now()
}

// RegisterWorkerRequest worker registration request. A non-positive PID is
// rejected: on Linux, kill with pid 0 or a negative pid signals a whole
// process group.
type RegisterWorkerRequest struct {
	PID  int       `json:"pid" binding:"required,gt=0"`
	Task *TaskSpec `json:"task" binding:"required"`
}
