package model

// TaskKind task kind
type TaskKind string

const (
	TaskKindNormal        TaskKind = "NORMAL_TASK"         // Regular task submission
	TaskKindActorCreation TaskKind = "ACTOR_CREATION_TASK" // Creates a long-lived actor process
	TaskKindActor         TaskKind = "ACTOR_TASK"          // Method call on an existing actor
)

// TaskSpec describes the single unit of work assigned to a worker. It is
// read-only to this node's memory defense: the scheduler that produced it
// owns the authoritative copy.
type TaskSpec struct {
	ID               string   `json:"id"`
	Kind             TaskKind `json:"kind"`
	MaxRetries       int      `json:"max_retries"`        // Retry budget for normal tasks
	MaxActorRestarts int      `json:"max_actor_restarts"` // Restart budget for actor-creation tasks
	Depth            int      `json:"depth"`              // Submission nesting level, 1 = top-level
}

// Retriable reports whether killing the worker running this task loses work
// the cluster can resubmit on its own. Actor (non-creation) tasks are never
// retriable here: killing the actor process is not something a single
// actor-task retry recovers from. Unrecognized kinds are treated as
// non-retriable so that irrecoverable work is never over-killed.
func (t *TaskSpec) Retriable() bool {
	switch t.Kind {
	case TaskKindNormal:
		return t.MaxRetries != 0
	case TaskKindActorCreation:
		return t.MaxActorRestarts != 0
	default:
		return false
	}
}
