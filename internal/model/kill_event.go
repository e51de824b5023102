package model

import (
	"time"
)

// KillEvent records one worker termination decided by the killing policy.
// Events are kept in a bounded in-memory history for the ops API.
type KillEvent struct {
	ID        string         `json:"id"`
	WorkerID  string         `json:"worker_id"`
	PID       int            `json:"pid"`
	TaskID    string         `json:"task_id"`
	TaskKind  TaskKind       `json:"task_kind"`
	Depth     int            `json:"depth"`
	Retriable bool           `json:"retriable"`
	Policy    string         `json:"policy"`
	Snapshot  MemorySnapshot `json:"snapshot"`
	KilledAt  time.Time      `json:"killed_at"`
}
